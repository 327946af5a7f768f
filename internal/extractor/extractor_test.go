package extractor

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siamscrape/product-scraper/internal/models"
	"github.com/siamscrape/product-scraper/internal/retailer"
)

func testDispatcher() *Dispatcher {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewDispatcher(retailer.NewRegistry(), logger)
}

func TestExtractRecordFromJSONLD(t *testing.T) {
	html := `<html><head>
<script type="application/ld+json">
{"@context":"https://schema.org","@type":"Product",
 "name":"Widget Pro 2000",
 "description":"A sturdy widget built for household repairs and light workshop duty",
 "brand":{"@type":"Brand","name":"Acme"},
 "sku":"W100",
 "offers":{"@type":"Offer","price":"19.99","priceCurrency":"THB"},
 "image":["https://cdn.example.com/w100.jpg"]}
</script>
</head><body><h1>Widget Pro 2000</h1></body></html>`

	d := testDispatcher()
	rec, err := d.ExtractRecord(html, "https://shop.example.com/p/w100")
	require.NoError(t, err)

	assert.Equal(t, "Widget Pro 2000", rec.Name)
	assert.Equal(t, "Acme", rec.Brand)
	assert.Equal(t, "W100", rec.SKU)
	assert.Equal(t, "Example", rec.Retailer)
	require.NotNil(t, rec.CurrentPrice)
	assert.InDelta(t, 19.99, *rec.CurrentPrice, 0.001)
	assert.Nil(t, rec.OriginalPrice)
	assert.False(t, rec.HasDiscount)
	assert.Contains(t, rec.Images, "https://cdn.example.com/w100.jpg")
	assert.Len(t, rec.ProductKey, 16)
}

func TestExtractRecordEmptyContent(t *testing.T) {
	d := testDispatcher()

	_, err := d.ExtractRecord("", "https://www.homepro.co.th/p/1")
	assert.ErrorIs(t, err, ErrEmptyContent)

	_, err = d.ExtractRecord("   \n ", "https://www.homepro.co.th/p/1")
	assert.ErrorIs(t, err, ErrEmptyContent)
}

func TestExtractRecordMissingURL(t *testing.T) {
	d := testDispatcher()

	_, err := d.ExtractRecord("<html><body>x</body></html>", "")
	assert.Error(t, err)
}

func TestExtractorForRouting(t *testing.T) {
	d := testDispatcher()

	assert.IsType(t, &thaiWatsadu{}, d.ExtractorFor("https://www.thaiwatsadu.com/th/p/1"))
	assert.IsType(t, &boonthavorn{}, d.ExtractorFor("https://www.boonthavorn.com/product/x"))
	assert.IsType(t, &megaHome{}, d.ExtractorFor("https://www.megahome.co.th/p/1"))
	assert.IsType(t, &homePro{}, d.ExtractorFor("https://www.homepro.co.th/p/1.html"))
	assert.IsType(t, &Engine{}, d.ExtractorFor("https://shop.example.com/p/1"))
}

func TestEngineNameDenylist(t *testing.T) {
	e := NewEngine()

	html := `<html><body><h1>HomePro</h1><title>โซฟาหนังแท้ 3 ที่นั่ง</title></body></html>`
	fields, err := e.Fields(html, "https://www.homepro.co.th/p/1.html")
	require.NoError(t, err)
	assert.Equal(t, "โซฟาหนังแท้ 3 ที่นั่ง", fields.Name)
}

func TestEngineNameRetailerPrefixStripped(t *testing.T) {
	e := NewEngine()

	html := `<html><body><h1>HomePro โซฟาหนังแท้ 3 ที่นั่ง</h1></body></html>`
	fields, err := e.Fields(html, "https://www.homepro.co.th/p/1.html")
	require.NoError(t, err)
	assert.Equal(t, "โซฟาหนังแท้ 3 ที่นั่ง", fields.Name)
}

func TestEnginePriceMarkup(t *testing.T) {
	d := testDispatcher()

	html := `<html><body>
<h1>โต๊ะทำงานไม้ยางพารา</h1>
<span class="price">฿2,790</span>
<span class="original-price">฿3,290</span>
</body></html>`

	rec, err := d.ExtractRecord(html, "https://shop.example.com/p/desk")
	require.NoError(t, err)

	require.NotNil(t, rec.CurrentPrice)
	require.NotNil(t, rec.OriginalPrice)
	assert.InDelta(t, 2790, *rec.CurrentPrice, 0.001)
	assert.InDelta(t, 3290, *rec.OriginalPrice, 0.001)
	assert.True(t, rec.HasDiscount)
	assert.InDelta(t, 500, rec.DiscountAmount, 0.001)
	assert.InDelta(t, 15.2, rec.DiscountPercent, 0.001)
}

func TestEngineRelativeImageResolved(t *testing.T) {
	e := NewEngine()

	html := `<html><head><meta property="og:image" content="/images/sofa.jpg"></head>
<body><h1>โซฟาเข้ามุมผ้ากำมะหยี่</h1></body></html>`

	fields, err := e.Fields(html, "https://www.homepro.co.th/p/1.html")
	require.NoError(t, err)
	assert.Contains(t, fields.Images, "https://www.homepro.co.th/images/sofa.jpg")
}

func TestEngineExtractField(t *testing.T) {
	e := NewEngine()

	html := `<html><body>
<h1>ตู้เสื้อผ้าบานเลื่อน</h1>
<div>วัสดุ: ไม้สัก</div>
<div>สี: ขาว</div>
</body></html>`

	assert.Equal(t, "ตู้เสื้อผ้าบานเลื่อน", e.ExtractField(html, "name"))
	assert.Equal(t, "ไม้สัก", e.ExtractField(html, "material"))
	assert.Equal(t, "ขาว", e.ExtractField(html, "color"))
	assert.Equal(t, "", e.ExtractField(html, "unknown-field"))
}

func TestThaiWatsaduSKUFromURL(t *testing.T) {
	d := testDispatcher()

	html := `<html><body><h1>ตู้เย็น 2 ประตู 7.4 คิว</h1></body></html>`
	rec, err := d.ExtractRecord(html, "https://www.thaiwatsadu.com/th/product/sku/60287551")
	require.NoError(t, err)

	assert.Equal(t, "Thai Watsadu", rec.Retailer)
	assert.Equal(t, "60287551", rec.SKU)
}

func TestMegaHomeSKUAndName(t *testing.T) {
	d := testDispatcher()

	html := `<html><body><h1>Mega Home สว่านไฟฟ้า Bosch GSB 550</h1></body></html>`
	rec, err := d.ExtractRecord(html, "https://www.megahome.co.th/p/556677")
	require.NoError(t, err)

	assert.Equal(t, "สว่านไฟฟ้า Bosch GSB 550", rec.Name)
	assert.Equal(t, "556677", rec.SKU)
	assert.Equal(t, "Mega Home", rec.Retailer)
}

func TestBoonthavornQuickInfo(t *testing.T) {
	d := testDispatcher()

	html := `<html><body>
<h1>กระเบื้องพอร์ซเลน Kerra</h1>
<label class="quickInfo-infoLabel-x7K">สี</label><label class="quickInfo-infoValue-y2M">ขาว</label><label class="quickInfo-infoLabel-a1B">ยี่ห้อ</label><label class="quickInfo-infoValue-c3D">Cotto</label>
</body></html>`

	rec, err := d.ExtractRecord(html, "https://www.boonthavorn.com/product/kerra-tile-60901")
	require.NoError(t, err)

	assert.Equal(t, "Boonthavorn", rec.Retailer)
	assert.Equal(t, "ขาว", rec.Color)
	assert.Equal(t, "Cotto", rec.Brand)
	assert.Equal(t, "60901", rec.SKU)
	assert.Equal(t, "กระเบื้องพอร์ซเลน Kerra", rec.Name)
}

func TestBoonthavornOldPriceSpans(t *testing.T) {
	b := newBoonthavorn(NewEngine())

	html := `<div class="productPrice-oldPrice-3xK"><span class="price-currency-2aB">บาท</span><span>3</span><span>,</span><span>2</span><span>9</span><span>0</span></div>`

	v, ok := b.oldPrice(html)
	require.True(t, ok)
	assert.InDelta(t, 3290, v, 0.001)
}

func TestMergeFieldsSpecializedWins(t *testing.T) {
	price := 100.0
	primary := mergeFields(
		rawFieldsWith("Bespoke", ""),
		rawFieldsWith("Generic", "Fallback Brand"),
	)

	assert.Equal(t, "Bespoke", primary.Name)
	assert.Equal(t, "Fallback Brand", primary.Brand)

	withPrice := mergeFields(rawFieldsWith("", ""), rawFieldsWithPrice(price))
	require.NotNil(t, withPrice.CurrentPrice)
	assert.InDelta(t, price, *withPrice.CurrentPrice, 0.001)
}

func rawFieldsWith(name, brand string) models.RawFields {
	return models.RawFields{Name: name, Brand: brand}
}

func rawFieldsWithPrice(p float64) models.RawFields {
	return models.RawFields{CurrentPrice: &p}
}

func TestParseJSONLDGraph(t *testing.T) {
	html := `<script type="application/ld+json">
{"@context":"https://schema.org","@graph":[
  {"@type":"WebSite","name":"Store"},
  {"@type":"Product","name":"Graph Product","sku":"G-1"}
]}
</script>`

	ld := parseJSONLD(html)
	require.NotNil(t, ld)
	assert.Equal(t, "Graph Product", ld.Name)
	assert.Equal(t, "G-1", ld.SKU)
}

func TestParseJSONLDMalformed(t *testing.T) {
	html := `<script type="application/ld+json">{not valid json</script>`
	assert.Nil(t, parseJSONLD(html))
}
