// Command pandelos computes Bidirectional Best Hits across genomes using
// Generalized Jaccard similarity over k-mer multisets.
package main

import "github.com/SimoneColli/PanDelos-plus/cmd"

func main() {
	cmd.Execute()
}
