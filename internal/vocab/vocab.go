// Copyright 2025 Lincoln Institute of Land Policy
// SPDX-License-Identifier: Apache-2.0

// Package vocab enumerates the RDF namespaces and predicates used when
// reconciling marketplace data into the triplestore. The predicate sets
// listed here are the full allowlist per entity kind; reconciliation never
// deletes triples outside of them.
package vocab

// Namespaces
const (
	MuCore  = "http://mu.semte.ch/vocabularies/core/"
	Shop    = "http://veeakker.be/vocabularies/shop/"
	Schema  = "http://schema.org/"
	GR      = "http://purl.org/goodrelations/v1#"
	Adms    = "http://www.w3.org/ns/adms#"
	Skos    = "http://www.w3.org/2004/02/skos/core#"
	Dct     = "http://purl.org/dc/terms/"
	Nfo     = "http://www.semanticdesktop.org/ontologies/2007/03/22/nfo#"
	Nie     = "http://www.semanticdesktop.org/ontologies/2007/01/19/nie#"
	Dbpedia = "http://dbpedia.org/ontology/"
	Prov    = "http://www.w3.org/ns/prov#"
	RdfNs   = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
)

const RdfType = RdfNs + "type"

// Every resource we mint carries a stable uuid
const MuUUID = MuCore + "uuid"

// Product
const (
	ProductType           = Schema + "Product"
	Title                 = Dct + "title"
	Description           = Dct + "description"
	Plu                   = Shop + "plu"
	SortIndex             = Shop + "sortIndex"
	AllowsFractionalOrder = Shop + "allowsFractionalOrder"
	Label                 = Shop + "label"
	IngredientsText       = Shop + "ingredientsText"
	AllergensText         = Shop + "allergensText"
	Thumbnail             = Shop + "thumbnail"
	Offerings             = Shop + "offerings"
	SingleUnitPrice       = Shop + "singleUnitPrice"
	TargetUnit            = Shop + "targetUnit"
)

// Label resources attached via shop:label
const (
	SourceLabel = "http://veeakker.be/labels/lokaal-voedsel-west"
	BioLabel    = "http://veeakker.be/labels/bio"
)

// Identifier (cross-run join key for products and suppliers)
const (
	IdentifierRel  = Adms + "identifier"
	IdentifierType = Adms + "Identifier"
	Notation       = Skos + "notation"
	Creator        = Dct + "creator"
)

// Offering and its sub-resources
const (
	OfferingType           = GR + "Offering"
	IncludesObject         = GR + "includesObject"
	TypeAndQuantityType    = GR + "TypeAndQuantityNode"
	AmountOfThisGood       = GR + "amountOfThisGood"
	HasUnitOfMeasurement   = GR + "hasUnitOfMeasurement"
	TypeOfGood             = GR + "typeOfGood"
	HasPriceSpecification  = GR + "hasPriceSpecification"
	UnitPriceSpecification = GR + "UnitPriceSpecification"
	QuantitativeValueType  = GR + "QuantitativeValue"
	HasCurrencyValue       = GR + "hasCurrencyValue"
	HasCurrency            = GR + "hasCurrency"
	HasValue               = GR + "hasValue"
	Offers                 = GR + "offers"
)

// Supplier
const (
	BusinessEntityType = GR + "BusinessEntity"
	LegalName          = GR + "legalName"
	Email              = Schema + "email"
)

// File metadata for product thumbnails. A logical file resource holds the
// descriptive triples; a share:// resource points back at it through
// nie:dataSource, mirroring the mu file service layout.
const (
	FileDataObject = Nfo + "FileDataObject"
	FileName       = Nfo + "fileName"
	FileUrl        = Nie + "url"
	DataSource     = Nie + "dataSource"
	Format         = Dct + "format"
	FileExtension  = Dbpedia + "fileExtension"
	Created        = Dct + "created"
)

// Harvest jobs
const (
	HarvestJobType = Shop + "HarvestJob"
	JobStatus      = Adms + "status"
	GeneratedBy    = Prov + "wasGeneratedBy"

	JobStatusRunning  = "http://veeakker.be/job-statuses/running"
	JobStatusFinished = "http://veeakker.be/job-statuses/finished"
	JobStatusError    = "http://veeakker.be/job-statuses/error"
)

// URI bases for minted resources
const (
	ProductBase          = "http://veeakker.be/products/"
	SupplierBase         = "http://veeakker.be/suppliers/"
	IdentifierBase       = "http://veeakker.be/identifiers/"
	OfferingBase         = "http://veeakker.be/offerings/"
	PriceSpecBase        = "http://veeakker.be/price-specifications/"
	QuantitativeBase     = "http://veeakker.be/quantitative-values/"
	TypeAndQuantityBase  = "http://veeakker.be/type-and-quantities/"
	FileBase             = "http://veeakker.be/files/"
	HarvestJobBase       = "http://veeakker.be/harvest-jobs/"
	ShareBase            = "share://"
)

// Session graph of the mu identifier/login stack, used to authorize
// harvest requests coming through the dispatcher
const (
	MuSession      = "http://mu.semte.ch/vocabularies/session/"
	MuExt          = "http://mu.semte.ch/vocabularies/ext/"
	SessionAccount = MuSession + "account"
	AccountRole    = MuExt + "role"

	AdministratorRole = "administrator"
)

// Marker stored as dct:creator on identifiers so the same external id can
// coexist for multiple source systems.
const SourceSystem = "LFW"
