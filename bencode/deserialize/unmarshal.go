package deserialize

import (
	"fmt"
	"io"
	"reflect"

	"github.com/mertwole/bencode-cli/bencode/value"
)

const fieldTag = "bencode"

var valueType = reflect.TypeFor[value.Value]()

// Deserialize decodes one value from reader and binds it into entity,
// which must be a pointer.
func Deserialize(reader io.Reader, entity any, opts ...Option) error {
	decoded, err := Decode(reader, opts...)
	if err != nil {
		return err
	}

	return Unmarshal(decoded, entity)
}

// Unmarshal binds a decoded value into entity. Dictionary keys map to
// struct fields by name or `bencode` tag; unknown keys are skipped and
// pointer fields stay nil when their key is missing. Fields of type
// value.Value receive the decoded subtree as is.
func Unmarshal(decoded value.Value, entity any) error {
	if entity == nil {
		return fmt.Errorf("cannot unmarshal into nil")
	}

	entityValue := reflect.ValueOf(entity)
	if entityValue.Kind() != reflect.Pointer || entityValue.IsNil() {
		return fmt.Errorf("wrong target type: expected non-nil pointer, got %s", entityValue.Kind())
	}

	return unmarshal(decoded, entityValue.Elem())
}

func unmarshal(decoded value.Value, target reflect.Value) error {
	if !target.CanSet() {
		return fmt.Errorf("cannot set value of type %s", target.Type())
	}

	if target.Type() == valueType {
		target.Set(reflect.ValueOf(&decoded).Elem())
		return nil
	}

	if target.Kind() == reflect.Pointer {
		newTarget := reflect.New(target.Type().Elem())
		err := unmarshal(decoded, newTarget.Elem())
		if err != nil {
			return err
		}

		target.Set(newTarget)
		return nil
	}

	switch decoded := decoded.(type) {
	case value.Integer:
		err := unmarshalInt(decoded, target)
		if err != nil {
			return fmt.Errorf("failed to bind integer: %w", err)
		}
	case value.ByteString:
		err := unmarshalString(decoded, target)
		if err != nil {
			return fmt.Errorf("failed to bind string: %w", err)
		}
	case value.List:
		err := unmarshalList(decoded, target)
		if err != nil {
			return fmt.Errorf("failed to bind list: %w", err)
		}
	case *value.Dictionary:
		err := unmarshalDictionary(decoded, target)
		if err != nil {
			return fmt.Errorf("failed to bind dictionary: %w", err)
		}
	default:
		return fmt.Errorf("unexpected value type %T", decoded)
	}

	return nil
}

func unmarshalInt(decoded value.Integer, target reflect.Value) error {
	switch target.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if target.OverflowInt(int64(decoded)) {
			return fmt.Errorf("value %d overflows %s", decoded, target.Type())
		}

		target.SetInt(int64(decoded))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if decoded < 0 || target.OverflowUint(uint64(decoded)) {
			return fmt.Errorf("value %d overflows %s", decoded, target.Type())
		}

		target.SetUint(uint64(decoded))
	case reflect.Bool:
		target.SetBool(decoded != 0)
	default:
		return fmt.Errorf("wrong field type: expected integer, got %s", target.Kind())
	}

	return nil
}

func unmarshalString(decoded value.ByteString, target reflect.Value) error {
	switch {
	case target.Kind() == reflect.String:
		target.SetString(string(decoded))
	case target.Kind() == reflect.Slice && target.Type().Elem().Kind() == reflect.Uint8:
		target.SetBytes([]byte(decoded))
	default:
		return fmt.Errorf("wrong field type: expected string, got %s", target.Kind())
	}

	return nil
}

func unmarshalList(decoded value.List, target reflect.Value) error {
	if target.Kind() != reflect.Slice {
		return fmt.Errorf("wrong field type: expected slice, got %s", target.Kind())
	}

	list := reflect.MakeSlice(target.Type(), len(decoded), len(decoded))
	for i, element := range decoded {
		err := unmarshal(element, list.Index(i))
		if err != nil {
			return fmt.Errorf("failed to bind list element %d: %w", i, err)
		}
	}

	target.Set(list)

	return nil
}

func unmarshalDictionary(decoded *value.Dictionary, target reflect.Value) error {
	switch target.Kind() {
	case reflect.Map:
		return unmarshalMap(decoded, target)
	case reflect.Struct:
		return unmarshalStruct(decoded, target)
	default:
		return fmt.Errorf("wrong field type: expected struct or map, got %s", target.Kind())
	}
}

func unmarshalMap(decoded *value.Dictionary, target reflect.Value) error {
	mapType := target.Type()
	if mapType.Key().Kind() != reflect.String {
		return fmt.Errorf("invalid map key type: %s, only string keys are supported", mapType.Key().Kind())
	}

	result := reflect.MakeMapWithSize(mapType, decoded.Len())
	for key, entryValue := range decoded.All() {
		element := reflect.New(mapType.Elem()).Elem()
		err := unmarshal(entryValue, element)
		if err != nil {
			return fmt.Errorf("failed to bind value of key %q: %w", key, err)
		}

		result.SetMapIndex(reflect.ValueOf(string(key)).Convert(mapType.Key()), element)
	}

	target.Set(result)

	return nil
}

func unmarshalStruct(decoded *value.Dictionary, target reflect.Value) error {
	nameMapping, err := fieldNameMapping(target.Type())
	if err != nil {
		return err
	}

	for key, entryValue := range decoded.All() {
		fieldIndex, fieldPresent := nameMapping[string(key)]
		if !fieldPresent {
			continue
		}

		err := unmarshal(entryValue, target.Field(fieldIndex))
		if err != nil {
			return fmt.Errorf("failed to bind field %q: %w", key, err)
		}
	}

	return nil
}

func fieldNameMapping(structType reflect.Type) (map[string]int, error) {
	nameMapping := make(map[string]int)
	for i := range structType.NumField() {
		field := structType.Field(i)
		if !field.IsExported() {
			continue
		}

		mapKey := field.Tag.Get(fieldTag)
		if mapKey == "-" {
			continue
		}
		if mapKey == "" {
			mapKey = field.Name
		}

		_, keyAlreadyExists := nameMapping[mapKey]
		if keyAlreadyExists {
			return nil, fmt.Errorf("duplicate field names in a dictionary: %s", mapKey)
		}
		nameMapping[mapKey] = i
	}

	return nameMapping, nil
}
