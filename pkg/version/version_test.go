package version_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/tuimigrate/pkg/version"
)

func TestString(t *testing.T) {
	t.Parallel()

	got := version.String("tuimigrate")

	assert.Contains(t, got, "tuimigrate "+version.Version)
	assert.Contains(t, got, "commit: "+version.Commit)
	assert.Contains(t, got, "built: "+version.Date)
}
