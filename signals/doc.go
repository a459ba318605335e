// Package signals computes the per-candidate scoring signals that do not
// depend on the query text: publication and service recency, citation impact,
// committee experience and the newcomer bonus.
//
// Every function returns a value in [0,1] and treats missing data as zero.
package signals
