package argpath_test

import (
	"github.com/specialistvlad/argcegar/internal/argstore"
	"github.com/specialistvlad/argcegar/internal/cfa"
	"github.com/specialistvlad/argcegar/internal/nodeid"
)

func argstoreLink(ref nodeid.Ref, edge *cfa.Edge) argstore.ParentLink {
	return argstore.ParentLink{Ref: ref, Edge: edge}
}
