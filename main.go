package main

import (
	"flag"
	"log"

	"github.com/meadori/nescore/bus"
	"github.com/meadori/nescore/cartridge"
	"github.com/meadori/nescore/display"
)

func main() {
	flag.Parse()

	var sys *bus.System
	if path := flag.Arg(0); path != "" {
		cart, err := cartridge.New(path)
		if err != nil {
			log.Fatalf("loading ROM: %v", err)
		}
		sys, err = bus.New(cart, display.SampleRate)
		if err != nil {
			log.Fatalf("loading ROM: %v", err)
		}
	}

	if err := display.Run(display.New(sys)); err != nil {
		log.Fatal(err)
	}
}
