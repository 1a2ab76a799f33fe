package config

import "github.com/inkwell-press/inkwell/utils"

const (
	ErrNoKey          = utils.Error("config key does not exist")
	ErrNotImplemented = utils.Error("config method or type not implemented")
	ErrInvalidType    = utils.Error("invalid destination type")
)

// ConfigProvider abstracts a configuration source. Implementations exist
// for JSON files and environment variables; application config structs
// are filled via GetKey with a pointer destination.
type ConfigProvider interface {
	Get(dest interface{}) error
	GetKey(key string, dest interface{}) error
	GetStringKey(key string) (string, error)
	GetBoolKey(key string) (bool, error)
	GetIntKey(key string) (int, error)
	GetFloat64Key(key string) (float64, error)
	GetSliceKey(key, separator string) ([]string, error)
	GetConfigNode(key string) (ConfigProvider, error)
	KeyExists(key string) bool
	KeyListExists(keys []string) bool
}
