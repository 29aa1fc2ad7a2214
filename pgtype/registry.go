package pgtype

import (
	"context"
	"strconv"

	"golang.org/x/sync/errgroup"
)

// CatalogQuerier issues a single catalog lookup using the simple query
// protocol and returns its rows as already-decoded text columns. *Conn
// implements this; Registry has no dependency on the connection package
// itself to avoid an import cycle.
type CatalogQuerier interface {
	QueryCatalog(ctx context.Context, sql string) ([][]string, error)
}

// Registry is the client-side snapshot of server-defined array, composite,
// and enum types, learned once at connect time (§3, §4.3 step 3). It is
// read-only after Load. Calling Load again replaces its three maps one
// after another; there is no separate Reload method.
type Registry struct {
	arrayElem  map[uint32]uint32
	compFields map[uint32][]uint32
	enumLabels map[uint32]map[uint32]string
}

// NewRegistry returns an empty registry. Decoding values whose OID falls
// outside the static table in §4.4 will fail with a TypeError until Load
// has populated it.
func NewRegistry() *Registry {
	return &Registry{
		arrayElem:  map[uint32]uint32{},
		compFields: map[uint32][]uint32{},
		enumLabels: map[uint32]map[uint32]string{},
	}
}

const arrayTypesQuery = `
select t.oid, t.typelem
from pg_type t
where t.typelem != 0 and t.typlen = -1`

const compositeFieldsQuery = `
select t.oid, a.atttypid
from pg_type t
join pg_class c on t.typrelid = c.oid
join pg_attribute a on a.attrelid = c.oid and a.attnum > 0 and not a.attisdropped
where t.typtype = 'c'
order by t.oid, a.attnum`

const enumLabelsQuery = `
select enumtypid, oid, enumlabel
from pg_enum
order by enumtypid, enumsortorder`

// Load runs the three bootstrap catalog queries concurrently and replaces
// the registry's contents. The three round-trips are independent simple
// queries over the same connection; q is expected to serialize access to
// the wire itself (the connection holds a mutex around each QueryCatalog
// call, through its ReadyForQuery), so the three round-trips run one after
// another on the socket. The returned rows are parsed into the maps only
// after all three have finished.
func (r *Registry) Load(ctx context.Context, q CatalogQuerier) error {
	var (
		arrayRows, compRows, enumRows [][]string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := q.QueryCatalog(gctx, arrayTypesQuery)
		arrayRows = rows
		return err
	})
	g.Go(func() error {
		rows, err := q.QueryCatalog(gctx, compositeFieldsQuery)
		compRows = rows
		return err
	})
	g.Go(func() error {
		rows, err := q.QueryCatalog(gctx, enumLabelsQuery)
		enumRows = rows
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	arrayElem := make(map[uint32]uint32, len(arrayRows))
	for _, row := range arrayRows {
		oid, elem := parseOID(row[0]), parseOID(row[1])
		arrayElem[oid] = elem
	}

	compFields := make(map[uint32][]uint32)
	for _, row := range compRows {
		oid, member := parseOID(row[0]), parseOID(row[1])
		compFields[oid] = append(compFields[oid], member)
	}

	enumLabels := make(map[uint32]map[uint32]string)
	for _, row := range enumRows {
		typOID, valOID, label := parseOID(row[0]), parseOID(row[1]), row[2]
		m := enumLabels[typOID]
		if m == nil {
			m = make(map[uint32]string)
			enumLabels[typOID] = m
		}
		m[valOID] = label
	}

	r.arrayElem = arrayElem
	r.compFields = compFields
	r.enumLabels = enumLabels
	return nil
}

func parseOID(s string) uint32 {
	n, _ := strconv.ParseUint(s, 10, 32)
	return uint32(n)
}

// ArrayElementOID reports the element OID for an array type OID, if known.
func (r *Registry) ArrayElementOID(oid uint32) (uint32, bool) {
	elem, ok := r.arrayElem[oid]
	return elem, ok
}

// CompositeFields reports the ordered member OIDs for a composite type OID,
// if known.
func (r *Registry) CompositeFields(oid uint32) ([]uint32, bool) {
	fields, ok := r.compFields[oid]
	return fields, ok
}

// EnumLabel reports the label for an enum type OID's value OID, if known.
func (r *Registry) EnumLabel(typOID, valueOID uint32) (string, bool) {
	m, ok := r.enumLabels[typOID]
	if !ok {
		return "", false
	}
	label, ok := m[valueOID]
	return label, ok
}

// EnumLabelByText finds the value OID for typOID whose label equals label,
// for encoding an enum parameter by its textual representation.
func (r *Registry) EnumLabelByText(typOID uint32, label string) (uint32, bool) {
	for valOID, l := range r.enumLabels[typOID] {
		if l == label {
			return valOID, true
		}
	}
	return 0, false
}

// IsEnumType reports whether oid names a known enum type.
func (r *Registry) IsEnumType(oid uint32) bool {
	_, ok := r.enumLabels[oid]
	return ok
}
