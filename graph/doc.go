// Package graph builds the committee co-membership graph and scores network
// centrality on it.
//
// Nodes are candidates; an edge joins two candidates who served on the same
// conference edition, weighted by the number of shared editions. Centrality
// is weighted PageRank, min-max normalized to [0,1].
package graph
