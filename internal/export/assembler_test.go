package export

import (
	"context"
	"strings"
	"testing"

	"partspress/internal/legacy"
	"partspress/internal/models"
	"partspress/internal/storage"
	"partspress/internal/store"
)

type fakeFinder map[string]string

func (f fakeFinder) FindImage(_ context.Context, key, _ string) string {
	return f[key]
}

func testCategories() []models.Category {
	catalog := "f1000_katalog.jpg"
	return []models.Category{
		{ID: 1, Key: "f1000", Path: "F1000", NameSV: "F1000", Position: 0, IsMain: true, CatalogImage: &catalog},
		{ID: 2, Key: "f1000-motor", Path: `F1000\Motor`, NameSV: "Motor", NameEN: "Engine", Position: 3, ParentKey: "f1000"},
		{ID: 3, Key: "f1000-vibrator", Path: `F1000\Vibrator`, NameSV: "Vibrator", Position: 5, ParentKey: "f1000"},
	}
}

func testStorageClient(t *testing.T) *storage.Client {
	t.Helper()
	client, err := storage.New(storage.Config{DataDir: t.TempDir(), PublicBaseURL: "http://localhost:8080"})
	if err != nil {
		t.Fatalf("storage: %v", err)
	}
	return client
}

func TestCategoryItems(t *testing.T) {
	client := testStorageClient(t)
	a := &Assembler{
		Finder:   fakeFinder{"f1000-motor": "http://localhost:8080/images/spare-part-images/f1000-motor.png"},
		Catalogs: client.CatalogImages,
	}

	items := a.CategoryItems(context.Background(), testCategories(), nil)
	if len(items) != 3 {
		t.Fatalf("got %d items", len(items))
	}

	main := items[0]
	if main.Parent != 0 || !strings.Contains(main.CatalogImageURL, "f1000_katalog.jpg") {
		t.Errorf("main item = %+v", main)
	}
	if main.PosNum != "" || main.Position != 0 {
		t.Errorf("main position = %q/%d", main.PosNum, main.Position)
	}
	if main.Image.Src != "" {
		t.Errorf("main image = %+v", main.Image)
	}

	motor := items[1]
	if motor.Parent != 1 {
		t.Errorf("motor parent = %d, want 1", motor.Parent)
	}
	if motor.Name != "Motor" || motor.LangName.EN != "Engine" {
		t.Errorf("motor names = %q / %+v", motor.Name, motor.LangName)
	}
	if motor.PosNum != "3" || motor.Position != 3 || motor.MenuOrder != 3 {
		t.Errorf("motor position = %+v", motor)
	}
	if motor.Image.Src == "" {
		t.Error("motor image missing")
	}
	if motor.CatalogImageURL != "" {
		t.Error("catalog url set on non-main category")
	}
	if motor.Display != "products" || motor.Products == nil {
		t.Errorf("motor defaults = %+v", motor)
	}
}

func TestCategoryItemsSnapshotOverrides(t *testing.T) {
	overrides := &legacy.Overrides{
		ParentBySlug:   map[string]string{"f1000-vibrator": "f1000-motor"},
		PositionBySlug: map[string]string{"f1000-vibrator": "9"},
	}
	a := &Assembler{}
	items := a.CategoryItems(context.Background(), testCategories(), overrides)

	vibrator := items[2]
	if vibrator.Parent != 2 {
		t.Errorf("snapshot parent should win, got %d", vibrator.Parent)
	}
	if vibrator.PosNum != "9" || vibrator.Position != 9 {
		t.Errorf("snapshot position should win, got %q/%d", vibrator.PosNum, vibrator.Position)
	}
}

func TestFilterAllowed(t *testing.T) {
	categories := testCategories()
	if got := FilterAllowed(categories, nil); len(got) != 3 {
		t.Errorf("nil overrides filtered to %d", len(got))
	}
	overrides := &legacy.Overrides{Allowed: map[string]bool{"f1000": true, "f1000-motor": true}}
	got := FilterAllowed(categories, overrides)
	if len(got) != 2 || got[1].Key != "f1000-motor" {
		t.Errorf("filtered = %+v", got)
	}
}

func TestProductItemsGrouping(t *testing.T) {
	price := "12.50"
	parts := []store.CategoryPart{
		{ID: 10, SKU: "403992", NameSV: "Bult", Price: &price, PosNum: 3, NoUnits: "2", CategoryKey: "f1000-motor"},
		{ID: 10, SKU: "403992", NameSV: "Bult", Price: &price, PosNum: 7, NoUnits: "1", CategoryKey: "f1000-motor"},
		{ID: 11, SKU: "500001", NameSV: "Bricka", PosNum: 0, CategoryKey: "gone-category"},
	}
	a := &Assembler{}
	items := a.ProductItems(parts, testCategories())

	// Same SKU at two positions stays two items.
	if len(items) != 3 {
		t.Fatalf("got %d items, want 3", len(items))
	}
	if items[0].PosNum != "3" || items[1].PosNum != "7" {
		t.Errorf("positions = %q, %q", items[0].PosNum, items[1].PosNum)
	}
	if items[0].Price != "12.50" {
		t.Errorf("price = %q", items[0].Price)
	}
	if len(items[0].Categories) != 1 || items[0].Categories[0].PosNum != "3" {
		t.Errorf("memberships = %+v", items[0].Categories)
	}
	if items[0].Categories[0].ID != 2 || items[0].Categories[0].Key != "f1000-motor" {
		t.Errorf("membership ref = %+v", items[0].Categories[0])
	}
	// Memberships pointing at unknown categories are dropped but the item
	// itself survives with an empty array.
	if len(items[2].Categories) != 0 || items[2].Categories == nil {
		t.Errorf("orphan memberships = %+v", items[2].Categories)
	}
	if items[2].PosNum != "" {
		t.Errorf("zero position should serialize empty, got %q", items[2].PosNum)
	}
}

func TestPartItemsBracketOrder(t *testing.T) {
	parts := []store.CategoryPart{
		{SKU: ">", PosNum: 0, CategoryKey: "c"},
		{SKU: "403992", NameSV: "Bult", PosNum: 3, CategoryKey: "c"},
		{SKU: "500001", NameSV: "Bricka", PosNum: 0, CategoryKey: "c"},
		{SKU: "<", PosNum: 0, CategoryKey: "c"},
		{SKU: "600002", NameSV: "Packning", PosNum: 1, CategoryKey: "c"},
	}
	items := PartItems(parts)
	var order []string
	for _, item := range items {
		order = append(order, item.SKU)
	}
	want := []string{"403992", "600002", ">", "500001", "<"}
	if len(order) != len(want) {
		t.Fatalf("order = %v", order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
	if items[2].PosNum != "0" {
		t.Errorf("marker pos = %q, want 0", items[2].PosNum)
	}
}

func TestPartItemsNoMarkersWithoutIncludedParts(t *testing.T) {
	parts := []store.CategoryPart{
		{SKU: ">", PosNum: 0, CategoryKey: "c"},
		{SKU: "403992", PosNum: 3, CategoryKey: "c"},
		{SKU: "<", PosNum: 0, CategoryKey: "c"},
	}
	items := PartItems(parts)
	if len(items) != 1 || items[0].SKU != "403992" {
		t.Errorf("items = %+v", items)
	}
}

func TestStoreImageFinder(t *testing.T) {
	ctx := context.Background()
	client := testStorageClient(t)
	finder := &StoreImageFinder{Images: client.CategoryImages}

	if err := client.CategoryImages.Put(ctx, "f1000-motor.png", []byte("png"), "image/png"); err != nil {
		t.Fatal(err)
	}
	if got := finder.FindImage(ctx, "f1000-motor", ""); !strings.Contains(got, "f1000-motor.png") {
		t.Errorf("key lookup = %q", got)
	}

	// Drawings uploaded under the sanitized path leaf are still found.
	if err := client.CategoryImages.Put(ctx, "vaxellada_for_f1000.jpg", []byte("jpg"), "image/jpeg"); err != nil {
		t.Fatal(err)
	}
	if got := finder.FindImage(ctx, "no-such-key", `F1000\Växellåda för F1000`); !strings.Contains(got, "vaxellada_for_f1000.jpg") {
		t.Errorf("leaf lookup = %q", got)
	}

	if got := finder.FindImage(ctx, "missing", ""); got != "" {
		t.Errorf("missing = %q", got)
	}
}

