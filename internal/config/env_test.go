package config

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// yamlKeys собирает пути всех полей-листьев: server.port, repository.redis.db, ...
func yamlKeys(t reflect.Type, prefix string) []string {
	var keys []string
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name, _, _ := strings.Cut(field.Tag.Get("yaml"), ",")
		if name == "" || name == "-" {
			continue
		}
		key := prefix + name
		if field.Type.Kind() == reflect.Struct && field.Type.PkgPath() == t.PkgPath() {
			keys = append(keys, yamlKeys(field.Type, key+".")...)
			continue
		}
		keys = append(keys, key)
	}
	return keys
}

// TestEnvBindings_CoverEveryKey - каждый ключ config.yml можно переопределить TASKLIST_*
func TestEnvBindings_CoverEveryKey(t *testing.T) {
	bound := map[string]bool{}
	for _, b := range envBindings {
		assert.False(t, bound[b.key], "ключ %s привязан дважды", b.key)
		bound[b.key] = true
	}

	keys := yamlKeys(reflect.TypeOf(Config{}), "")
	assert.NotEmpty(t, keys)
	for _, key := range keys {
		assert.True(t, bound[key], "нет переменной окружения для %s", key)
	}
	assert.Len(t, bound, len(keys))
}
