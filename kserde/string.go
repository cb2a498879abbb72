package kserde

// StringSerializer writes s as raw UTF-8 bytes. It is meant for record keys,
// which are never JSON encoded.
var StringSerializer = func(s string) ([]byte, error) {
	return []byte(s), nil
}

// StringDeserializer reads raw bytes as a string; a nil key yields "".
var StringDeserializer = func(data []byte) (string, error) {
	if data == nil {
		return "", nil
	}
	return string(data), nil
}

var String = Serde[string]{
	Serializer:   StringSerializer,
	Deserializer: StringDeserializer,
}
