package provider

import (
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/gobeam/stringy"

	"github.com/inkwell-press/inkwell/config"
)

const CommaSeparator = ","

var DefaultSeparator = CommaSeparator

// EnvProvider builds configuration from environment variables. All vars
// matching the prefix are captured on creation; with convertCase enabled,
// camelCase keys are looked up as SNAKE_CASE.
type EnvProvider struct {
	prefix      string
	configData  map[string]string
	convertCase bool
}

func NewEnvProvider(prefix string, convertCamelCase bool) *EnvProvider {
	p := &EnvProvider{
		prefix:      prefix,
		configData:  make(map[string]string),
		convertCase: convertCamelCase,
	}
	for _, env := range os.Environ() {
		toks := strings.SplitN(env, "=", 2)
		if strings.HasPrefix(toks[0], prefix) {
			p.configData[toks[0]] = toks[1]
		}
	}
	return p
}

func (e *EnvProvider) convertKey(key string) string {
	if e.convertCase {
		return stringy.New(key).SnakeCase("?", "").ToUpper()
	}
	return key
}

// Get is not supported; environment variables carry no document structure.
func (e *EnvProvider) Get(_ interface{}) error {
	return config.ErrNotImplemented
}

// GetKey fills dest from the environment. A pointer-to-struct dest treats
// key as a prefix and fills each field from prefix+"_"+fieldName, where
// fieldName may be overridden with an `env` struct tag. Scalar pointer
// destinations read the single variable named by key.
func (e *EnvProvider) GetKey(key string, dest interface{}) error {
	t := reflect.TypeOf(dest)
	if t.Kind() == reflect.Ptr && t.Elem().Kind() == reflect.Struct {
		return e.readStruct(key, dest)
	}
	return e.readScalar(key, dest)
}

func (e *EnvProvider) readStruct(prefix string, dest interface{}) error {
	v := reflect.ValueOf(dest).Elem()
	if v.Kind() != reflect.Struct {
		return config.ErrInvalidType
	}

	prefix = strings.ToUpper(e.convertKey(prefix))
	for i := 0; i < v.NumField(); i++ {
		field := v.Type().Field(i)
		name := field.Tag.Get("env")
		if name == "" {
			name = field.Name
		}
		val, ok := e.configData[prefix+"_"+e.convertKey(name)]
		if !ok {
			continue
		}

		fv := v.Field(i)
		switch fv.Kind() {
		case reflect.String:
			fv.SetString(val)
		case reflect.Int, reflect.Int64:
			if n, err := strconv.ParseInt(val, 10, 64); err == nil {
				fv.SetInt(n)
			}
		case reflect.Uint, reflect.Uint32, reflect.Uint64:
			if n, err := strconv.ParseUint(val, 10, 64); err == nil {
				fv.SetUint(n)
			}
		case reflect.Bool:
			if b, err := strconv.ParseBool(val); err == nil {
				fv.SetBool(b)
			}
		case reflect.Float64:
			if f, err := strconv.ParseFloat(val, 64); err == nil {
				fv.SetFloat(f)
			}
		case reflect.Slice:
			if fv.Type().Elem().Kind() == reflect.String {
				items := strings.Split(val, DefaultSeparator)
				s := reflect.MakeSlice(fv.Type(), 0, len(items))
				for _, item := range items {
					s = reflect.Append(s, reflect.ValueOf(strings.TrimSpace(item)))
				}
				fv.Set(s)
			}
		}
	}
	return nil
}

func (e *EnvProvider) readScalar(key string, dest interface{}) error {
	if !e.KeyExists(key) {
		return config.ErrNoKey
	}

	switch d := dest.(type) {
	case *string:
		v, err := e.GetStringKey(key)
		if err == nil {
			*d = v
		}
		return err
	case *int:
		v, err := e.GetIntKey(key)
		if err == nil {
			*d = v
		}
		return err
	case *bool:
		v, err := e.GetBoolKey(key)
		if err == nil {
			*d = v
		}
		return err
	case *float64:
		v, err := e.GetFloat64Key(key)
		if err == nil {
			*d = v
		}
		return err
	case *[]string:
		v, err := e.GetSliceKey(key, DefaultSeparator)
		if err == nil {
			*d = v
		}
		return err
	}
	return config.ErrNotImplemented
}

func (e *EnvProvider) GetStringKey(key string) (string, error) {
	v, ok := e.configData[e.convertKey(key)]
	if !ok {
		return "", config.ErrNoKey
	}
	return v, nil
}

func (e *EnvProvider) GetBoolKey(key string) (bool, error) {
	if v, ok := e.configData[e.convertKey(key)]; ok {
		return strconv.ParseBool(v)
	}
	return false, config.ErrNoKey
}

func (e *EnvProvider) GetIntKey(key string) (int, error) {
	if v, ok := e.configData[e.convertKey(key)]; ok {
		return strconv.Atoi(v)
	}
	return 0, config.ErrNoKey
}

func (e *EnvProvider) GetFloat64Key(key string) (float64, error) {
	if v, ok := e.configData[e.convertKey(key)]; ok {
		return strconv.ParseFloat(v, 64)
	}
	return 0, config.ErrNoKey
}

func (e *EnvProvider) GetSliceKey(key, separator string) ([]string, error) {
	v, ok := e.configData[e.convertKey(key)]
	if !ok {
		return nil, config.ErrNoKey
	}
	buf := make([]string, 0)
	for _, s := range strings.Split(v, separator) {
		buf = append(buf, strings.TrimSpace(s))
	}
	return buf, nil
}

func (e *EnvProvider) GetConfigNode(_ string) (config.ConfigProvider, error) {
	return nil, config.ErrNotImplemented
}

func (e *EnvProvider) KeyExists(key string) bool {
	_, ok := e.configData[e.convertKey(key)]
	return ok
}

func (e *EnvProvider) KeyListExists(keys []string) bool {
	for _, k := range keys {
		if !e.KeyExists(k) {
			return false
		}
	}
	return true
}
