package project

import (
	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"

	"github.com/geosolve/geotools/utils"
)

// firstOccurrence is set on the id of the first serialization of a shared object. Only that
// occurrence carries the object data; later ones are references by the masked id.
const firstOccurrence = 0x80000000

// refTable holds every shared object decoded so far, keyed by id, together with the
// polymorphic type names registered by the file.
type refTable struct {
	objects   map[uint32]interface{}
	polyNames map[uint32]string
}

func newRefTable() *refTable {
	return &refTable{
		objects:   map[uint32]interface{}{},
		polyNames: map[uint32]string{},
	}
}

func asObject(v interface{}, what string) (map[string]interface{}, error) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, errors.Wrap(utils.NewUnexpectedTypeError(m, v), what)
	}
	return m, nil
}

func asID(v interface{}, what string) (uint32, error) {
	f, ok := v.(float64)
	if !ok || f < 0 || f > float64(^uint32(0)) || f != float64(uint32(f)) {
		return 0, errors.Errorf("%s must be an unsigned 32 bit integer, got %v", what, v)
	}
	return uint32(f), nil
}

// resolvePtr returns the object behind a {"ptr_wrapper": {...}} value. The first occurrence is
// decoded and recorded; references are looked up. A zero id is a null pointer.
func resolvePtr[T any](
	t *refTable,
	v interface{},
	what string,
	decode func(data map[string]interface{}) (T, error),
) (T, error) {
	var zero T
	ptr, err := asObject(v, what)
	if err != nil {
		return zero, err
	}
	wrapper, err := asObject(ptr["ptr_wrapper"], what+".ptr_wrapper")
	if err != nil {
		return zero, err
	}
	id, err := asID(wrapper["id"], what+".ptr_wrapper.id")
	if err != nil {
		return zero, err
	}
	if id == 0 {
		return zero, nil
	}

	if id&firstOccurrence == 0 {
		obj, ok := t.objects[id]
		if !ok {
			return zero, errors.Errorf("%s references pointer id %d before it is defined", what, id)
		}
		typed, ok := obj.(T)
		if !ok {
			return zero, errors.Wrapf(utils.NewUnexpectedTypeError(zero, obj), "%s pointer id %d", what, id)
		}
		return typed, nil
	}

	id &^= firstOccurrence
	if _, ok := t.objects[id]; ok {
		return zero, errors.Errorf("%s defines pointer id %d twice", what, id)
	}
	data, err := asObject(wrapper["data"], what+".ptr_wrapper.data")
	if err != nil {
		return zero, err
	}
	obj, err := decode(data)
	if err != nil {
		return zero, errors.Wrap(err, what)
	}
	t.objects[id] = obj
	return obj, nil
}

// polymorphicName reads the type of a polymorphic pointer. The first pointer of every type
// names it; later ones only repeat its id. ok is false for a null pointer.
func (t *refTable) polymorphicName(ptr map[string]interface{}, what string) (name string, ok bool, err error) {
	pid, err := asID(ptr["polymorphic_id"], what+".polymorphic_id")
	if err != nil {
		return "", false, err
	}
	if pid == 0 {
		return "", false, nil
	}
	if pid&firstOccurrence == 0 {
		name, known := t.polyNames[pid]
		if !known {
			return "", false, errors.Errorf("%s references polymorphic id %d before it is named", what, pid)
		}
		return name, true, nil
	}
	name, isString := ptr["polymorphic_name"].(string)
	if !isString || name == "" {
		return "", false, errors.Errorf("%s is missing its polymorphic_name", what)
	}
	t.polyNames[pid&^firstOccurrence] = name
	return name, true, nil
}

// decodeInto fills out from a decoded JSON value using the json field tags. Numbers are
// accepted where booleans are expected and scalars where arrays are.
func decodeInto(input, out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}
