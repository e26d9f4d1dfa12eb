package loader

import "github.com/pelletier/go-toml/v2"

type tomlCodec struct{}

func (tomlCodec) decode(data []byte) (map[string]any, error) {
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (tomlCodec) encode(doc map[string]any) ([]byte, error) {
	return toml.Marshal(doc)
}
