/*
annealer is a generic metaheuristic search driver: simulated annealing and
parallel tempering over any solution type implementing the engine's
RandomMover contract, run by a supervised pool of workers. Two adapters
ship with it, a student/project/mentor assignment problem and a
travelling-salesman permutation problem; plugging in a new domain means
writing a new adapter package, not touching the engine.
*/
package main

import (
	"os"

	"annealer/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
