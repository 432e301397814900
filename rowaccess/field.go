package rowaccess

import (
	"reflect"

	"rtasql/coltype"
)

// FieldAccessor builds a Getter/Setter pair bound to a named field of a
// struct type, for the common case of a column that maps directly onto a
// Go struct field. row handles passed to the resulting closures must be
// pointers to that struct type. This keeps column access behind
// host-supplied typed closures without making every table definition
// hand-write trivial field plumbing.
//
// kind controls how the field's value is boxed into/out of a
// coltype.Value; it must agree with the field's actual Go type.
// FieldAccessor itself does not check this: the returned closures panic
// when reflect rejects the access, since a mismatch here is a programming
// error in the host's table definition, not a runtime data error.
func FieldAccessor(fieldName string, kind coltype.Kind) (coltype.Getter, coltype.Setter) {
	get := func(row any) coltype.Value {
		fv := fieldValue(row, fieldName)
		return boxField(fv, kind)
	}
	set := func(row any, v coltype.Value) {
		fv := fieldValue(row, fieldName)
		unboxField(fv, kind, v)
	}
	return get, set
}

func fieldValue(row any, fieldName string) reflect.Value {
	rv := reflect.ValueOf(row)
	if rv.Kind() != reflect.Ptr {
		panic("rowaccess: row handle must be a pointer to a struct")
	}
	fv := rv.Elem().FieldByName(fieldName)
	if !fv.IsValid() {
		panic("rowaccess: no such field " + fieldName)
	}
	return fv
}

func boxField(fv reflect.Value, kind coltype.Kind) coltype.Value {
	switch kind {
	case coltype.KindString:
		return coltype.NewString(fv.String())
	case coltype.KindPString:
		if fv.IsNil() {
			return coltype.NewString("")
		}
		return coltype.NewString(fv.Elem().String())
	case coltype.KindInt32:
		return coltype.NewInt32(int32(fv.Int()))
	case coltype.KindInt16:
		return coltype.NewInt16(int16(fv.Int()))
	case coltype.KindUint8:
		return coltype.NewUint8(uint8(fv.Uint()))
	case coltype.KindInt64:
		return coltype.NewInt64(fv.Int())
	case coltype.KindPInt32:
		if fv.IsNil() {
			return coltype.NewInt32(0)
		}
		return coltype.NewInt32(int32(fv.Elem().Int()))
	case coltype.KindPInt64:
		if fv.IsNil() {
			return coltype.NewInt64(0)
		}
		return coltype.NewInt64(fv.Elem().Int())
	case coltype.KindFloat32:
		return coltype.NewFloat32(float32(fv.Float()))
	case coltype.KindFloat64:
		return coltype.NewFloat64(fv.Float())
	case coltype.KindPFloat64:
		if fv.IsNil() {
			return coltype.NewFloat64(0)
		}
		return coltype.NewFloat64(fv.Elem().Float())
	case coltype.KindPointer:
		return coltype.NewPointer(fv.Interface())
	default:
		panic("rowaccess: unsupported kind")
	}
}

func unboxField(fv reflect.Value, kind coltype.Kind, v coltype.Value) {
	switch kind {
	case coltype.KindString:
		fv.SetString(v.Str())
	case coltype.KindPString:
		if fv.IsNil() {
			fv.Set(reflect.New(fv.Type().Elem()))
		}
		fv.Elem().SetString(v.Str())
	case coltype.KindInt32, coltype.KindInt16, coltype.KindInt64:
		fv.SetInt(v.Int())
	case coltype.KindUint8:
		fv.SetUint(uint64(v.Int()))
	case coltype.KindPInt32, coltype.KindPInt64:
		if fv.IsNil() {
			fv.Set(reflect.New(fv.Type().Elem()))
		}
		fv.Elem().SetInt(v.Int())
	case coltype.KindFloat32, coltype.KindFloat64:
		fv.SetFloat(v.Float())
	case coltype.KindPFloat64:
		if fv.IsNil() {
			fv.Set(reflect.New(fv.Type().Elem()))
		}
		fv.Elem().SetFloat(v.Float())
	case coltype.KindPointer:
		fv.Set(reflect.ValueOf(v.Pointer()))
	default:
		panic("rowaccess: unsupported kind")
	}
}
