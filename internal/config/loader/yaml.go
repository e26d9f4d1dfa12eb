package loader

import "gopkg.in/yaml.v3"

type yamlCodec struct{}

func (yamlCodec) decode(data []byte) (map[string]any, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (yamlCodec) encode(doc map[string]any) ([]byte, error) {
	return yaml.Marshal(doc)
}
