package oled96_test

import (
	"log"
	"os"

	"github.com/flavioheleno/oled96"
	"github.com/flavioheleno/oled96/font"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"
)

func Example() {
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}

	f, err := os.Open("oled96.fnt")
	if err != nil {
		log.Fatal(err)
	}
	tab, err := font.Load(f)
	f.Close()
	if err != nil {
		log.Fatal(err)
	}

	dev, err := oled96.Open("", &oled96.Opts{Font: tab})
	if err != nil {
		log.Fatal(err)
	}
	defer dev.Halt()

	dev.Fill(0x00)
	dev.WriteString(0, 0, "Hello", oled96.Large)
	dev.WriteString(0, 4, "SSD1306 128x64", oled96.Small)
	for x := 0; x < oled96.Width; x++ {
		dev.SetPixel(x, 63, image1bit.On)
	}
	if err := dev.Err(); err != nil {
		log.Printf("display may be out of sync: %v", err)
	}
}
