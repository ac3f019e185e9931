package cfgctx

import (
	jsoniter "github.com/json-iterator/go"

	"github.com/httpinspect/engine/internal/status"
)

var cfgJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// DumpCfgMap serializes c's module-config string map to JSON, for a host
// that wants to snapshot or ship a context's configuration (spec.md §3
// Context "module_config: arbitrary key/value pairs set by directives").
func (c *Context) DumpCfgMap() ([]byte, error) {
	snapshot := make(map[string]string, c.CfgMap.Len())
	for _, k := range c.CfgMap.Keys() {
		v, ok := c.CfgMap.Get(k)
		if !ok {
			continue
		}
		snapshot[k] = v
	}
	data, err := cfgJSON.Marshal(snapshot)
	if err != nil {
		return nil, status.Wrap(status.EInval, err, "marshal cfg map for context %s", c.Name)
	}
	return data, nil
}

// LoadCfgMap merges a JSON object of string key/values into c's module
// config map, overwriting any keys already present.
func (c *Context) LoadCfgMap(data []byte) error {
	var m map[string]string
	if err := cfgJSON.Unmarshal(data, &m); err != nil {
		return status.Wrap(status.EInval, err, "unmarshal cfg map for context %s", c.Name)
	}
	for k, v := range m {
		c.CfgMap.Set(k, v)
	}
	return nil
}
