// bsp2svg renders Quake and Half-Life levels as flat SVG maps.
package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "convert", "c":
		err = cmdConvert(args)
	case "info":
		err = cmdInfo(args)
	case "colors":
		err = cmdColors(args)
	case "textures", "tex":
		err = cmdTextures(args)
	case "maps", "ls":
		err = cmdMaps(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`bsp2svg - Quake/Half-Life level to SVG map converter

Usage:
  bsp2svg <command> [options]

Commands:
  convert [options] <map> [label]    Write <out>/<label>.svg (and a preview)
  info [options] <map>               Show level statistics and bounds
  colors [options] <map>             Print the mean color of every texture
  textures [options] <map> <dir>     Dump embedded textures as PNG or TGA
  maps [options]                     List maps in the configured PAK archives

Common options:
  -config <file>    Config file (default ./bsp2svg.yaml, then user config dir)
  -pak <file>       PAK archive to search, repeatable (later wins)
  -palette <file>   palette.lmp for Quake textures
  -axis x|y|z       Projection axis (default z)
  -out <dir>        Output directory (default target)
  -padding <n>      Padding around the map in level units (default 100)
  -workers <n>      Concurrent texture samplers (default 1)
  -preview png|webp Also write a raster preview
  -debug            Enable debug logging

Examples:
  bsp2svg convert maps/e1m1.bsp
  bsp2svg convert -pak id1/pak0.pak -preview webp e1m1
  bsp2svg convert -axis x -out side e1m1.bsp e1m1_side
  bsp2svg textures -format tga -scale half e1m1.bsp ./tex`)
}
