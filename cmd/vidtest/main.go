// Command vidtest runs the video frontend against a synthetic pattern core.
package main

import (
	"flag"
	"log"

	"github.com/SeanRamey/86Box/pattern"
	"github.com/SeanRamey/86Box/standalone"
	"github.com/SeanRamey/86Box/standalone/storage"
)

func main() {
	cycle := flag.Int("cycle", 0, "switch guest resolution every N frames (0 disables)")
	vmPath := flag.String("vmpath", "", "directory holding this machine's config and NVR (default: user data directory)")
	flag.Parse()

	storage.SetVMPath(*vmPath)

	factory := &pattern.Factory{ModeFrames: *cycle}
	if *cycle > 0 {
		factory.Modes = [][2]int{{640, 480}, {800, 600}, {720, 400}}
	}

	if err := standalone.Run(factory); err != nil {
		log.Fatal(err)
	}
}
