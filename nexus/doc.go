/*
Package nexus provides facilities for reading and writing the TAXA and TREES
blocks of NEXUS files, as written by Bayesian phylogenetics software such as
MrBayes and BEAST.

A NEXUS file must start with the #NEXUS header. The first TAXA block declares
the taxon namespace with a DIMENSIONS NTAX=n command and a TAXLABELS command
listing exactly n labels. The first TREES block that follows may carry a
TRANSLATE table mapping short keys to taxa, and then holds one
"tree <name> = <newick>;" command per tree. Every other block is skipped.

Trees can be read eagerly (all retained trees are parsed up front and kept
in memory) or lazily (each call to Next parses one more tree). A burn-in and
a skip-first flag drop a prefix of the trees in either mode. When the
prefix is large, or the parser is lazy, trees are counted in a first cheap
pass before any of them is parsed.

Files are either loaded into memory or streamed through a buffered reader,
chosen by file size unless a read strategy is given explicitly.
*/
package nexus
