package cache

// KeyPrefix - префиксы для разных типов ключей
type KeyPrefix string

const (
	PrefixLink   KeyPrefix = "link"   // link:shortCode, primary record in the Redis store
	PrefixCached KeyPrefix = "cached" // cached:shortCode, read-through cache entry
)

// KeyBuilder - построитель ключей
type KeyBuilder struct {
	namespace string
}

func NewKeyBuilder(namespace string) *KeyBuilder {
	return &KeyBuilder{namespace: namespace}
}

// Build создает ключ с префиксом и опциональным namespace
func (k *KeyBuilder) Build(prefix KeyPrefix, parts ...string) string {
	key := string(prefix)

	if k.namespace != "" {
		key = k.namespace + ":" + key
	}

	for _, part := range parts {
		key += ":" + part
	}

	return key
}

func (k *KeyBuilder) Link(shortCode string) string {
	return k.Build(PrefixLink, shortCode)
}

func (k *KeyBuilder) CachedLink(shortCode string) string {
	return k.Build(PrefixCached, shortCode)
}

var DefaultKeyBuilder = NewKeyBuilder("")
