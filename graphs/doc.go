// Package graphs holds the standard authentication graphs and the resolvers
// that choose between them.
//
// RegisterDefaults installs every standard graph into a graph.Registry.
// Platform graphs, which depend on a platform credential source, are added
// with RegisterPlatform.
package graphs
