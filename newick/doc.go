/*
Package newick provides facilities for reading and writing rooted binary trees
in the Newick format. The format used is roughly equivalent to the conventions
established here:
http://evolution.genetics.washington.edu/phylip/newick_doc.html, with the
extensions commonly produced by Bayesian samplers: quoted labels, [comments]
anywhere between tokens and [&key=value,...] annotations after a vertex.

An informal description of the Newick format can be found here:
http://evolution.genetics.washington.edu/phylip/newicktree.html.

Only strictly bifurcating trees are supported. Every internal vertex, including
the root, must have exactly two children.

The Parser is generic over the tree representation: it drives a tree.Builder
and resolves tip tokens through a tree.Resolver, so the same grammar code
produces CompactTrees sharing one LabelMap or self-contained SimpleTrees. The
nexus package reuses it for the trees embedded in a TREES block.
*/
package newick
