package provider

import (
	"encoding/json"
	"io"
	"os"
	"sync"

	"github.com/inkwell-press/inkwell/config"
	"github.com/inkwell-press/inkwell/utils"
)

const ErrJsonInvalidSource = utils.Error("NewJsonProvider: invalid source type")

// JsonProvider reads configuration from a JSON document. The top level
// must be an object; each top-level key is addressable via GetKey and
// GetConfigNode.
type JsonProvider struct {
	configData map[string]json.RawMessage
	m          sync.RWMutex
}

// NewJsonProvider creates a JsonProvider from a file name, an io.Reader,
// a []byte or a json.RawMessage.
func NewJsonProvider(src interface{}) (config.ConfigProvider, error) {
	p := &JsonProvider{
		configData: make(map[string]json.RawMessage),
	}

	switch v := src.(type) {
	case json.RawMessage:
		if err := json.Unmarshal(v, &p.configData); err != nil {
			return nil, err
		}
	case []byte:
		if err := json.Unmarshal(v, &p.configData); err != nil {
			return nil, err
		}
	case io.Reader:
		if err := p.fromReader(v); err != nil {
			return nil, err
		}
	case string:
		f, err := os.Open(v)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		if err := p.fromReader(f); err != nil {
			return nil, err
		}
	default:
		return nil, ErrJsonInvalidSource
	}
	return p, nil
}

func (j *JsonProvider) fromReader(src io.Reader) error {
	data, err := io.ReadAll(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, &j.configData)
}

// Get de-serializes the whole document into dest.
func (j *JsonProvider) Get(dest interface{}) error {
	j.m.RLock()
	defer j.m.RUnlock()

	data, err := json.Marshal(j.configData)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

func (j *JsonProvider) GetKey(key string, dest interface{}) error {
	j.m.RLock()
	defer j.m.RUnlock()

	v, ok := j.configData[key]
	if !ok {
		return config.ErrNoKey
	}
	return json.Unmarshal(v, dest)
}

func (j *JsonProvider) GetStringKey(key string) (string, error) {
	var result string
	err := j.GetKey(key, &result)
	return result, err
}

func (j *JsonProvider) GetBoolKey(key string) (bool, error) {
	var result bool
	err := j.GetKey(key, &result)
	return result, err
}

func (j *JsonProvider) GetIntKey(key string) (int, error) {
	var result int
	err := j.GetKey(key, &result)
	return result, err
}

func (j *JsonProvider) GetFloat64Key(key string) (float64, error) {
	var result float64
	err := j.GetKey(key, &result)
	return result, err
}

// GetSliceKey note: separator is ignored, JSON arrays carry structure already.
func (j *JsonProvider) GetSliceKey(key, _ string) ([]string, error) {
	result := make([]string, 0)
	err := j.GetKey(key, &result)
	return result, err
}

func (j *JsonProvider) GetConfigNode(key string) (config.ConfigProvider, error) {
	j.m.RLock()
	defer j.m.RUnlock()

	v, ok := j.configData[key]
	if !ok {
		return nil, config.ErrNoKey
	}
	return NewJsonProvider(v)
}

func (j *JsonProvider) KeyExists(key string) bool {
	j.m.RLock()
	defer j.m.RUnlock()

	_, ok := j.configData[key]
	return ok
}

func (j *JsonProvider) KeyListExists(keys []string) bool {
	for _, k := range keys {
		if !j.KeyExists(k) {
			return false
		}
	}
	return true
}
