package msafe_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/momentum-safe/msafe"
)

func TestVersion(t *testing.T) {
	msafe.GitCommit = ""
	assert.Equal(t, "v0.1.0-dev", msafe.Version())

	msafe.GitCommit = "12345678"
	assert.Equal(t, "v0.1.0-dev 12345678", msafe.Version())
	msafe.GitCommit = ""
}
