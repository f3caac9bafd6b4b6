package pg

import (
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/postboard-dev/postboard/shared/config"
	"github.com/stretchr/testify/assert"
)

func TestContainsPattern(t *testing.T) {
	assert.Equal(t, "%go%", ContainsPattern("go"))
	assert.Equal(t, `%100\%%`, ContainsPattern("100%"))
	assert.Equal(t, `%a\_b%`, ContainsPattern("a_b"))
	assert.Equal(t, `%c:\\dir%`, ContainsPattern(`c:\dir`))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", &pq.Error{Code: "23505"})))
	assert.False(t, IsUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, IsUniqueViolation(fmt.Errorf("other")))
}

func TestDSN(t *testing.T) {
	cfg := &config.Config{Public: config.Public{Pg: config.Pg{Host: "db", Port: 5432, User: "u", Password: "p", Dbname: "posts"}}}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=posts sslmode=disable", DSN(cfg))
}
