// Package domain defines the value types of an elicited personal network.
//
// A Network is one respondent's complete state: the ego node (key 0), up to
// 25 named alters, the undirected links between alters, one layout focus per
// node and the scalar progress through the stages. Everything here is plain
// data; the operations that keep it consistent live in core/network.
//
// # Stages
//
// The elicitation runs naming, cycling, numeric, categorical, closeness,
// liking and linking in that order. Each stage collects one Field. The view
// projections (NamingView, PlacementView, LinkingView) are what a renderer
// draws for a stage.
package domain
