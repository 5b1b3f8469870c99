/*
gompirun is a helper for launching gompi jobs on a local machine.

Since Go is good at shared memory, generally programs should use Go's
primitives rather than MPI in a shared-memory environment. However,
running locally can be helpful for debugging and prototyping.

gompirun takes two arguments. The first argument is the number of
instances to launch, and the second argument is the command to run. Any
additional arguments will be passed to the program. gompirun sets
GOMPI_SIZE, GOMPI_RANK, and GOMPI_PORT_BASE in each child's environment;
it does not itself speak the wire protocol or participate in the mesh.

Instructions:

	go install github.com/tcpmpi/gompi/mpirun/gompirun
	gompirun 8 programname -otherflag=value
*/
package main

import (
	"log"
	"os"
	"os/exec"
	"strconv"
	"sync"
)

const basePort = 49152

func main() {
	if len(os.Args) < 3 {
		log.Fatal("less than two arguments, must have at least number of nodes and executable")
	}
	nNodes, err := strconv.Atoi(os.Args[1])
	if err != nil {
		log.Fatal("error parsing nNodes: ", err)
	}
	if nNodes < 1 {
		log.Fatal("number of nodes must be positive")
	}

	execName := os.Args[2]
	otherArgs := os.Args[3:]

	launch(execName, nNodes, otherArgs)
}

// launch starts nNodes copies of execName, one per rank, each with its
// identity supplied through the environment rather than flags.
func launch(execName string, nNodes int, args []string) {
	wg := &sync.WaitGroup{}
	for rank := 0; rank < nNodes; rank++ {
		wg.Add(1)
		go func(rank int) {
			defer wg.Done()

			cmd := exec.Command(execName, args...)
			cmd.Env = append(os.Environ(),
				"GOMPI_SIZE="+strconv.Itoa(nNodes),
				"GOMPI_RANK="+strconv.Itoa(rank),
				"GOMPI_PORT_BASE="+strconv.Itoa(basePort),
			)
			cmd.Stdin = os.Stdin
			cmd.Stdout = os.Stdout
			cmd.Stderr = os.Stderr
			if err := cmd.Run(); err != nil {
				log.Printf("rank %d exited: %v", rank, err)
			}
		}(rank)
	}
	wg.Wait()
}
