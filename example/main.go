// Example program using the gitversion library.
//
// Run from the repo root:
//
//	go run ./example/
//
// Set GITHUB_TOKEN to also version the repository through the GitHub API:
//
//	GITHUB_TOKEN=ghp_xxx go run ./example/ MyCarrier-DevOps/go-gitversion
package main

import (
	"context"
	"fmt"
	"log"
	"maps"
	"os"
	"os/signal"
	"slices"

	"github.com/MyCarrier-DevOps/go-gitversion/pkg/gitversion"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	local, err := gitversion.Calculate(ctx, gitversion.Options{Path: ".", Explain: true})
	if err != nil {
		log.Fatalf("local calculation failed: %v", err)
	}
	fmt.Print(local.Explanation)
	printVariables("Local", local)

	if os.Getenv("GITHUB_TOKEN") == "" || len(os.Args) < 2 {
		return
	}
	owner, repo, err := gitversion.ParseRepository(os.Args[1])
	if err != nil {
		log.Fatal(err)
	}
	remote, err := gitversion.CalculateRemote(ctx, gitversion.RemoteOptions{
		Owner: owner,
		Repo:  repo,
		Token: os.Getenv("GITHUB_TOKEN"),
	})
	if err != nil {
		log.Fatalf("remote calculation failed: %v", err)
	}
	printVariables("Remote "+os.Args[1], remote)
}

func printVariables(label string, result *gitversion.Result) {
	fmt.Printf("=== %s ===\n", label)
	for _, k := range slices.Sorted(maps.Keys(result.Variables)) {
		fmt.Printf("%-34s %s\n", k, result.Variables[k])
	}
	fmt.Println()
}
