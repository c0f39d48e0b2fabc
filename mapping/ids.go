package mapping

import (
	"crypto/sha256"
	"encoding/hex"
)

// Reserved ids identifying built-in schema entities. Their string values are
// part of the on-disk schema and must match across every writer and reader of
// a given graph.
const (
	NamePropertyID        = "name-property"
	DescriptionPropertyID = "description-property"
	TypesAttributeID      = "types-attribute"
	ValueTypeAttributeID  = "value-type-attribute"
	RelationTypeAttrID    = "relation-type-attribute"
	RelationFromAttrID    = "relation-from-attribute"
	RelationToAttrID      = "relation-to-attribute"
	RelationIndexID       = "relation-index"
	SchemaTypeID          = "schema-type"
	PropertyTypeID        = "property-type"
	RelationSchemaTypeID  = "relation-schema-type"
	RelationTypeID        = "relation-type"

	// TypesRelationKind is the reserved relation kind whose outbound edges
	// encode an entity's type assignments.
	TypesRelationKind = "TYPES"

	// ParentSpaceRelationKind is the reserved relation kind used by the space
	// hierarchy. It is stored in IndexerSpaceID, never in the subject space, so
	// a space cannot mis-declare its own parent.
	ParentSpaceRelationKind = "PARENT_SPACE"

	// RootSpaceID is the reserved root of the space hierarchy.
	RootSpaceID = "root"

	// IndexerSpaceID is the reserved space that owns PARENT_SPACE relations.
	// Bootstrap installs the built-in schema entities in RootSpaceID, not here.
	IndexerSpaceID = "indexer"

	// BootstrapVersion is the version every built-in schema entity is installed
	// at.
	BootstrapVersion = "0"
)

// DeriveID deterministically derives a stable id from a canonical tuple of
// strings by hashing with SHA-256, so that repeated writes of the same logical
// fact (e.g. a TYPES relation for the same (space, entity, type) triple)
// produce the same id and are therefore idempotent. The hash is not
// security-sensitive, only required to be collision-resistant in practice.
func DeriveID(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0}) // separator: avoids ("ab","c") colliding with ("a","bc")
	}
	return hex.EncodeToString(h.Sum(nil))
}

// TypesRelationID derives the deterministic id of the TYPES relation linking
// entityID to typeID within spaceID.
func TypesRelationID(spaceID, entityID, typeID string) string {
	return DeriveID(spaceID, entityID, TypesAttributeID, typeID)
}
