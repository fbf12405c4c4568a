package nexus

import "strings"

// Literals of the NEXUS grammar. All of them are matched case-insensitively.
const (
	header     = "#NEXUS"
	blockBegin = "Begin"
	blockEnd   = "End;"
	dimensions = "Dimensions"
	ntax       = "ntax"
	taxlabels  = "Taxlabels"
	translate  = "Translate"
	treeCmd    = "tree"
)

// LabelDelimiters are the bytes that end an unquoted label in a NEXUS
// command.
const LabelDelimiters = " ,;\t\n\r"

// Block is the kind of a NEXUS block, taken from its "Begin <name>;" line.
type Block int

const (
	BlockUnknown Block = iota
	BlockTaxa
	BlockTrees
	BlockData
	BlockCharacters
	BlockDistances
	BlockSets
	BlockAssumptions
)

var blockNames = map[string]Block{
	"taxa":        BlockTaxa,
	"trees":       BlockTrees,
	"data":        BlockData,
	"characters":  BlockCharacters,
	"distances":   BlockDistances,
	"sets":        BlockSets,
	"assumptions": BlockAssumptions,
}

// ParseBlock returns the block kind for a block name, ignoring case. Names
// that are not recognized give BlockUnknown.
func ParseBlock(name string) Block {
	return blockNames[strings.ToLower(strings.TrimSpace(name))]
}

func (b Block) String() string {
	for name, block := range blockNames {
		if block == b {
			return strings.ToUpper(name)
		}
	}
	return "UNKNOWN"
}
