package pgwire

import (
	"github.com/lib/pq/oid"

	"rtasql/coltype"
)

// typeInfo carries the two wire facts a RowDescription field needs beyond
// its name: the Postgres type OID clients use to pick a decoder, and the
// fixed on-wire size for that type (-1 for variable-length types).
type typeInfo struct {
	oid  oid.Oid
	size int16
}

// typeFor maps a column kind to its wire type. Every value is sent as
// text (format code 0) regardless of this OID; the OID only tells the
// client which text syntax to expect, per the simple query protocol.
func typeFor(k coltype.Kind) typeInfo {
	switch k {
	case coltype.KindString, coltype.KindPString:
		return typeInfo{oid: oid.T_varchar, size: -1}
	case coltype.KindInt16:
		return typeInfo{oid: oid.T_int2, size: 2}
	case coltype.KindUint8:
		return typeInfo{oid: oid.T_int2, size: 2}
	case coltype.KindInt32, coltype.KindPInt32:
		return typeInfo{oid: oid.T_int4, size: 4}
	case coltype.KindInt64, coltype.KindPInt64:
		return typeInfo{oid: oid.T_int8, size: 8}
	case coltype.KindFloat32:
		return typeInfo{oid: oid.T_float4, size: 4}
	case coltype.KindFloat64, coltype.KindPFloat64:
		return typeInfo{oid: oid.T_float8, size: 8}
	case coltype.KindPointer:
		return typeInfo{oid: oid.T_int4, size: 4}
	default:
		return typeInfo{oid: oid.T_text, size: -1}
	}
}
