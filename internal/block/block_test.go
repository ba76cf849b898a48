package block

import (
	"image"
	"image/color"
	"testing"

	"github.com/ivlev/voterroll/internal/analyzer"
	"github.com/ivlev/voterroll/internal/config"
)

func testPage() *image.Gray {
	page := image.NewGray(image.Rect(0, 0, 400, 300))
	for y := 0; y < 300; y++ {
		for x := 0; x < 400; x++ {
			page.SetGray(x, y, color.Gray{Y: uint8((x + y) % 256)})
		}
	}
	return page
}

func TestExtract(t *testing.T) {
	page := testPage()
	ex := NewExtractor(config.DefaultCalibration())
	region := analyzer.Region{Rect: image.Rect(50, 40, 350, 240)}

	b := ex.Extract(page, region)

	if b.Region != region {
		t.Errorf("Region = %v", b.Region)
	}
	if b.Image.Rect != image.Rect(0, 0, 300, 200) {
		t.Fatalf("block bounds = %v", b.Image.Rect)
	}
	if got, want := b.Image.GrayAt(10, 20).Y, page.GrayAt(60, 60).Y; got != want {
		t.Errorf("block pixel = %d, want %d", got, want)
	}

	// The block does not share pixels with the page.
	page.SetGray(60, 60, color.Gray{Y: 1})
	if b.Image.GrayAt(10, 20).Y == 1 {
		t.Error("block aliases the page buffer")
	}

	if b.House == nil {
		t.Fatal("Expected house crop")
	}
	// [2%, 25%) of 300x200.
	if b.House.Rect != image.Rect(0, 0, 69, 46) {
		t.Errorf("house crop bounds = %v", b.House.Rect)
	}
	for _, v := range b.House.Pix {
		if v != 0 && v != 255 {
			t.Fatalf("house crop is not binary: %d", v)
		}
	}
	// Block pixel (6+x, 4+y) maps to page (56+x, 44+y) = (100+x+y) % 256.
	if b.House.GrayAt(0, 0).Y != 0 {
		t.Errorf("pixel 100 should be below the threshold")
	}
	if b.House.GrayAt(60, 40).Y != 255 {
		t.Errorf("pixel 200 should be above the threshold")
	}
}

func TestHouseRect(t *testing.T) {
	ex := NewExtractor(config.DefaultCalibration())
	tests := []struct {
		w, h int
		want image.Rectangle
	}{
		{141, 96, image.Rect(2, 1, 35, 24)},
		{300, 150, image.Rect(6, 3, 75, 37)},
		{1000, 400, image.Rect(20, 8, 250, 100)},
	}
	for _, tt := range tests {
		if got := ex.HouseRect(tt.w, tt.h); got != tt.want {
			t.Errorf("HouseRect(%d, %d) = %v, want %v", tt.w, tt.h, got, tt.want)
		}
	}
}

func TestExtractDegenerateHouseCrop(t *testing.T) {
	cal := config.DefaultCalibration()
	cal.HouseX1 = cal.HouseX0
	ex := NewExtractor(cal)

	b := ex.Extract(testPage(), analyzer.Region{Rect: image.Rect(0, 0, 200, 100)})
	if b.House != nil {
		t.Errorf("Expected no house crop, got %v", b.House.Rect)
	}
	if b.Image == nil || b.Image.Rect.Dx() != 200 {
		t.Error("block image must still be extracted")
	}

	// Tiny blocks truncate to an empty crop as well.
	b = NewExtractor(config.DefaultCalibration()).Extract(testPage(), analyzer.Region{Rect: image.Rect(0, 0, 3, 3)})
	if b.House != nil {
		t.Errorf("Expected no house crop for a 3x3 block")
	}
}

func TestExtractScaledHouseCrop(t *testing.T) {
	cal := config.DefaultCalibration()
	cal.HouseScale = 2
	ex := NewExtractor(cal)

	b := ex.Extract(testPage(), analyzer.Region{Rect: image.Rect(50, 40, 350, 240)})
	if b.House == nil || b.House.Rect != image.Rect(0, 0, 138, 92) {
		t.Fatalf("scaled house crop = %v", b.House)
	}
	for _, v := range b.House.Pix {
		if v != 0 && v != 255 {
			t.Fatalf("scaled crop is not binary: %d", v)
		}
	}
}

func TestBinarize(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 3, 1))
	src.Pix = []uint8{150, 151, 10}
	got := Binarize(src, 150)
	want := []uint8{0, 255, 0}
	for i := range want {
		if got.Pix[i] != want[i] {
			t.Errorf("pixel %d = %d, want %d", i, got.Pix[i], want[i])
		}
	}
}
