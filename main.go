// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: Bayesian VAR with Stochastic Volatility
// Class: 02-613 at Caregie Mellon University

package main

import "bvarsv/cmd"

// Fits a Bayesian VAR with stochastic volatility from the command line.
// See `bvarsv run --help` and `bvarsv draw --help`.
func main() {
	cmd.Execute()
}
