package main

import (
	"chyp8/cmd"

	// window frontends register themselves with the screen package
	_ "chyp8/emu/screen/glwindow"
	_ "chyp8/emu/screen/sdlwindow"

	"github.com/faiface/pixel/pixelgl"
)

func main() {
	pixelgl.Run(runChyp8)
}

// runChyp8 runs the command line on a goroutine that can reach the main
// thread, which the pixel frontend needs.
func runChyp8() {
	cmd.Execute()
}
