package masker

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"go.uber.org/zap"
)

var ErrConfigNotPointer = errors.New("masker: config must be a pointer to a struct")

const maskedValue = "****"

var durationType = reflect.TypeOf(time.Duration(0))

// LogConfigs логгирует структуры, в том числе вложенные и встроенные.
// Поля с тегом masked:"true" логгируются замаскированными.
// Каждая структура логируется отдельной строкой.
func LogConfigs(logger *zap.Logger, configs ...interface{}) error {
	for _, config := range configs {
		v := reflect.ValueOf(config)
		if v.Kind() != reflect.Ptr || v.IsNil() || v.Elem().Kind() != reflect.Struct {
			return ErrConfigNotPointer
		}
		v = v.Elem()

		logger.Info("config", zap.Any(v.Type().Name(), maskStructFields(v)))
	}
	return nil
}

// maskStructFields собирает поля структуры в map, маскируя помеченные тегом masked.
func maskStructFields(v reflect.Value) map[string]interface{} {
	t := v.Type()
	result := make(map[string]interface{}, v.NumField())
	for i := 0; i < v.NumField(); i++ {
		fieldType := t.Field(i)
		if !fieldType.IsExported() {
			continue
		}
		field := v.Field(i)
		masked := fieldType.Tag.Get("masked") == "true"

		for field.Kind() == reflect.Ptr {
			if field.IsNil() {
				break
			}
			field = field.Elem()
		}

		switch {
		case field.Kind() == reflect.Ptr:
			result[fieldType.Name] = nil
		case field.Kind() == reflect.Struct && field.Type() != reflect.TypeOf(time.Time{}):
			result[fieldType.Name] = maskStructFields(field)
		case masked && field.Kind() == reflect.String:
			result[fieldType.Name] = maskSensitiveData(field.String())
		case masked:
			result[fieldType.Name] = maskedValue
		case field.Type() == durationType:
			result[fieldType.Name] = time.Duration(field.Int()).String()
		default:
			result[fieldType.Name] = fmt.Sprint(field.Interface())
		}
	}
	return result
}

// maskSensitiveData оставляет только первый и последний символы.
// Строки короче трех символов полностью заменяются на "****".
func maskSensitiveData(data string) string {
	if len(data) <= 2 {
		return maskedValue
	}
	return string(data[0]) + maskedValue + string(data[len(data)-1])
}
