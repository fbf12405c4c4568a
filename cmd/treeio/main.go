// Command treeio inspects, converts and checks phylogenetic tree files in
// Newick and NEXUS format.
//
// Usage:
//
//	# Summarize every tree after discarding a 10% burn-in
//	treeio stats --burnin-fraction 0.1 run.trees
//
//	# Rewrite a NEXUS file as Newick with taxon names
//	treeio convert --to newick run.trees > run.nwk
//
//	# Fail if any tree is structurally broken
//	treeio validate trees.nwk
package main

func main() {
	Execute()
}
