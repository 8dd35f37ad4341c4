package assets

import (
	_ "embed"
)

// Demo program for the QT namespace: fills a gradient framebuffer in
// cache, configures a 32x24 grayscale screen through the ports and
// raises the module interrupt to render one frame.
//
//go:embed demo.qt
var DemoQT []byte
