package interfaces

import "github.com/mezonai/poldrop/types"

// CardRenderer turns key records into a printable document
type CardRenderer interface {
	RenderFile(path string, records []types.KeyRecord) error
}
