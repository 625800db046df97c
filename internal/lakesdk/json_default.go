//go:build !sonic

package lakesdk

import gojson "github.com/goccy/go-json"

var (
	jsonMarshal   = gojson.Marshal
	jsonUnmarshal = gojson.Unmarshal
)
