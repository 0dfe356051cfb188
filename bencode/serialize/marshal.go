package serialize

import (
	"fmt"
	"io"
	"math"
	"reflect"

	"github.com/mertwole/bencode-cli/bencode/value"
)

const fieldTag = "bencode"

var valueType = reflect.TypeFor[value.Value]()

// Serialize converts entity with Marshal and writes its encoding.
func Serialize(writer io.Writer, entity any) error {
	marshaled, err := Marshal(entity)
	if err != nil {
		return err
	}

	return Write(writer, marshaled)
}

// Marshal converts Go values into a bencode value tree. Structs become
// dictionaries keyed by field name or `bencode` tag, nil pointer fields are
// left out.
func Marshal(entity any) (value.Value, error) {
	if entity == nil {
		return nil, fmt.Errorf("unserializable value: nil")
	}

	return marshal(reflect.ValueOf(entity))
}

func marshal(entity reflect.Value) (value.Value, error) {
	if entity.Type().Implements(valueType) && entity.Kind() != reflect.Interface {
		if entity.Kind() == reflect.Pointer && entity.IsNil() {
			return nil, fmt.Errorf("unserializable value: nil %s", entity.Type())
		}

		return entity.Interface().(value.Value), nil
	}

	switch entity.Kind() {
	case reflect.Pointer, reflect.Interface:
		if entity.IsNil() {
			return nil, fmt.Errorf("unserializable value: nil %s", entity.Type())
		}

		return marshal(entity.Elem())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return value.Integer(entity.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		unsigned := entity.Uint()
		if unsigned > math.MaxInt64 {
			return nil, fmt.Errorf("value %d overflows int64", unsigned)
		}

		return value.Integer(unsigned), nil
	case reflect.Bool:
		if entity.Bool() {
			return value.Integer(1), nil
		}
		return value.Integer(0), nil
	case reflect.String:
		return value.ByteString(entity.String()), nil
	case reflect.Array, reflect.Slice:
		if entity.Type().Elem().Kind() == reflect.Uint8 {
			byteString := make(value.ByteString, entity.Len())
			reflect.Copy(reflect.ValueOf(byteString), entity)
			return byteString, nil
		}

		list := make(value.List, 0, entity.Len())
		for i := range entity.Len() {
			element, err := marshal(entity.Index(i))
			if err != nil {
				return nil, fmt.Errorf("failed to serialize list element %d: %w", i, err)
			}

			list = append(list, element)
		}

		return list, nil
	case reflect.Map:
		return marshalMap(entity)
	case reflect.Struct:
		return marshalStruct(entity)
	default:
		return nil, fmt.Errorf("unserializable type: %v", entity.Kind())
	}
}

func marshalMap(entity reflect.Value) (value.Value, error) {
	mapKeyKind := entity.Type().Key().Kind()
	if mapKeyKind != reflect.String {
		return nil, fmt.Errorf("invalid map key type: %s, only string keys are supported", mapKeyKind)
	}

	dictionary := value.NewDictionary()

	entries := entity.MapRange()
	for entries.Next() {
		mapKey := entries.Key().String()

		mapValue, err := marshal(entries.Value())
		if err != nil {
			return nil, fmt.Errorf("failed to serialize value of key %q: %w", mapKey, err)
		}

		dictionary.Set([]byte(mapKey), mapValue)
	}

	return dictionary, nil
}

func marshalStruct(entity reflect.Value) (value.Value, error) {
	dictionary := value.NewDictionary()

	fields := make(map[string]struct{})
	for i := range entity.NumField() {
		fieldType := entity.Type().Field(i)
		if !fieldType.IsExported() {
			continue
		}

		fieldKey := fieldType.Tag.Get(fieldTag)
		if fieldKey == "-" {
			continue
		}
		if fieldKey == "" {
			fieldKey = fieldType.Name
		}

		if _, ok := fields[fieldKey]; ok {
			return nil, fmt.Errorf("fields with duplicate name found: %s", fieldKey)
		}
		fields[fieldKey] = struct{}{}

		field := entity.Field(i)
		if (field.Kind() == reflect.Pointer || field.Kind() == reflect.Interface) && field.IsNil() {
			// Optional field.
			continue
		}

		fieldValue, err := marshal(field)
		if err != nil {
			return nil, fmt.Errorf("failed to serialize field %s: %w", fieldKey, err)
		}

		dictionary.Set([]byte(fieldKey), fieldValue)
	}

	return dictionary, nil
}
