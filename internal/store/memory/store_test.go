package memory

import (
	"testing"

	"bounty-backend/internal/store/storetest"
	"bounty-backend/internal/store/types"
)

func TestMemoryStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) types.Store {
		return NewStore()
	})
}
