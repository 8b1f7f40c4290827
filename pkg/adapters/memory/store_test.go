package memory_test

import (
	"testing"

	"github.com/aretw0/flowstudio/pkg/adapters/memory"
	"github.com/aretw0/flowstudio/pkg/ports/tests"
)

func TestMemoryStore_Contract(t *testing.T) {
	tests.RunVersionedStoreContract(t, memory.NewStore())
}
