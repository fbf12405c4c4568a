/*
Package tree provides an arena based representation of rooted, strictly
bifurcating phylogenetic trees together with the label bookkeeping needed to
share one taxon namespace across many trees.

A GenTree stores its vertices in a single slice and refers to parents and
children by index. Leaves carry a label of type L: either an int index into a
shared LabelMap (CompactTree) or the label string itself (SimpleTree).

Trees are built bottom up through the Builder interface, which is what the
newick and nexus readers drive. The Resolver type maps the raw tip tokens of a
Newick string onto label references, honoring a NEXUS TRANSLATE table when one
is present.
*/
package tree
