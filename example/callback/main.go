package main

import (
	"context"
	"fmt"
	"log"

	nexusedge "github.com/avanlier/NexusEdge"
)

func main() {
	cfg, err := nexusedge.LoadConfig("../../data/config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	callback := func(b *nexusedge.Block) error {
		fmt.Printf("block: %d rows x %d channels %v\n", b.Rows, b.Cols, b.Channels)
		for row := 0; row < b.Rows; row++ {
			fmt.Printf("  %v\n", b.Row(row))
		}
		return nil
	}

	rt, err := nexusedge.NewRuntime(cfg, nexusedge.WithSink(nexusedge.NewCallbackSink("stdout", callback)))
	if err != nil {
		log.Fatalf("connect device: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := rt.Run(ctx); err != nil && err != context.Canceled {
		log.Fatalf("runtime error: %v", err)
	}
}
