package service

import "encoding/json"

func jsonMarshal(v interface{}) ([]byte, error)      { return json.Marshal(v) }
func jsonUnmarshal(raw []byte, dst interface{}) error { return json.Unmarshal(raw, dst) }
