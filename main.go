// qrcast moves a file between two machines over a one-way optical channel:
// the sender cycles QR codes on screen and the receiver scans them.
package main

import "qrcast/cmd"

func main() {
	cmd.Execute()
}
