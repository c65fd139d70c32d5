package graph

import "errors"

// Common sentinel errors
var (
	ErrNodeNotFound     = errors.New("node not found")
	ErrDuplicateNode    = errors.New("duplicate node id")
	ErrInvalidNode      = errors.New("invalid node")
	ErrConfigNotFound   = errors.New("configuration not found")
	ErrLeafParent       = errors.New("leaf nodes cannot take children")
	ErrEdgeNotFound     = errors.New("edge not found")
	ErrLinkNotValidated = errors.New("link mutation attempted without validator")
)
