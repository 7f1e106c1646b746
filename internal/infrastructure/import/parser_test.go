package poimport

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/pohub/backend/internal/domain/purchaseorder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const zeptoCSV = `PO No.,PO Date,Status,Vendor Name,Delivery Location,SKU,SKU Desc,PO Qty,Unit Base Cost,Total Value
ZP-500,05-02-2024,PENDING,Acme Foods,Bengaluru,SKU-1,Marie Biscuits,10,10.00,100.00
ZP-500,05-02-2024,PENDING,Acme Foods,Bengaluru,SKU-2,Potato Chips,5,11.00,55.00
ZP-500,05-02-2024,PENDING,Acme Foods,Bengaluru,SKU-3,Namkeen,2,11.00,22.00
`

const flipkartCSV = `PO#,FKPO-1001,,Nature Of Supply,Intra State
SUPPLIER NAME,Acme Foods,,GSTIN,29ABCDE1234F1Z5
CREATED DATE,05-02-24,,PO Expiry,20-02-24
BILLED TO ADDRESS,"Flipkart WH, Bhiwandi",,SHIPPED TO ADDRESS,"Flipkart FC, Malur"
,,,,
S. no.,FSN/ISBN13,HSN/SA Code,Title,Quantity,Supplier Price,MRP,IGST Rate,IGST Amount,Total Amount
1,FSN1,1905,Marie Biscuits,4,25.00,30.00,18,18.00,118.00
2,FSN2,1905,Cream Biscuits,2,50.00,60.00,18,18.00,118.00
x,FSN3,1905,Broken Row,1,10.00,12.00,18,1.80,11.80
4,FSN4,2106,Namkeen,10,10.00,15.00,12,12.00,112.00
5,FSN5,2106,Potato Chips,1,100.00,120.00,12,12.00,112.00
Total Quantity,17
`

const cityMallCSV = `PO Number : CM-9001
PO Date : 12/03/2024
Vendor Name :,Acme Foods
Delivery Address :,"Shop 4, Indore"
S.No,Product Name,HSN Code,Quantity,Unit Price,CGST %,SGST %
1,Poha,1904,10,40,2.5,2.5
2,Sugar,1701,5,44,2.5,2.5
`

// spreadsheetML renders rows as an Excel 2003 XML workbook
func spreadsheetML(rows [][]string) []byte {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0"?>` + "\n")
	b.WriteString(`<Workbook xmlns="urn:schemas-microsoft-com:office:spreadsheet" xmlns:ss="urn:schemas-microsoft-com:office:spreadsheet">`)
	b.WriteString(`<Worksheet ss:Name="Sheet1"><Table>`)
	for _, row := range rows {
		b.WriteString("<Row>")
		for _, v := range row {
			fmt.Fprintf(&b, `<Cell><Data ss:Type="String">%s</Data></Cell>`, v)
		}
		b.WriteString("</Row>")
	}
	b.WriteString(`</Table></Worksheet></Workbook>`)
	return []byte(b.String())
}

func fixedClock() time.Time {
	return time.UnixMilli(1700000000000)
}

func TestZeptoParser(t *testing.T) {
	t.Run("header from the first row and totals from the lines", func(t *testing.T) {
		res, err := NewZeptoParser().Parse([]byte(zeptoCSV), "ops@acme")
		require.NoError(t, err)
		assert.Equal(t, purchaseorder.VendorZepto, res.Vendor)
		assert.Equal(t, FormatCSV, res.Format)
		require.Len(t, res.Orders, 1)

		po := res.Single()
		assert.Equal(t, "ZP-500", po.Header.PONumber)
		assert.Len(t, po.Lines, 3)
		assert.Equal(t, int64(17), po.Header.TotalQuantity)
		assert.Equal(t, "177.00", po.Header.TotalAmount.StringFixed(2))
		assert.Equal(t, "177.00", po.Header.TotalTaxableValue.StringFixed(2))
		assert.Equal(t, purchaseorder.StatusOpen, po.Header.Status)
		assert.Equal(t, "Acme Foods", po.Header.SupplierName)
		assert.Equal(t, "Bengaluru", po.Header.DeliveryLocation)
		assert.Equal(t, "ops@acme", po.Header.UploadedBy)
		require.NotNil(t, po.Header.OrderDate)
		assert.Equal(t, time.Date(2024, time.February, 5, 0, 0, 0, 0, time.UTC), *po.Header.OrderDate)

		for i, l := range po.Lines {
			assert.Equal(t, i+1, l.LineNumber)
		}
		assert.Equal(t, "SKU-2", po.Lines[1].SKU)
		assert.Equal(t, "Potato Chips", po.Lines[1].Title)
		assert.Zero(t, res.Skipped)
	})

	t.Run("rows for another PO are skipped", func(t *testing.T) {
		data := zeptoCSV + "ZP-501,05-02-2024,PENDING,Acme Foods,Bengaluru,SKU-9,Other,7,1.00,7.00\n"
		res, err := NewZeptoParser().Parse([]byte(data), "ops")
		require.NoError(t, err)

		po := res.Single()
		assert.Len(t, po.Lines, 3)
		assert.Equal(t, int64(17), po.Header.TotalQuantity)
		assert.Equal(t, 1, res.Skipped)
		require.Len(t, res.Warnings, 1)
		assert.Equal(t, ErrCodeImportForeignPO, res.Warnings[0].Code)
		assert.Equal(t, 5, res.Warnings[0].Row)
		assert.Equal(t, "ZP-501", res.Warnings[0].Value)
	})

	t.Run("header only", func(t *testing.T) {
		data := strings.SplitN(zeptoCSV, "\n", 2)[0] + "\n"
		_, err := NewZeptoParser().Parse([]byte(data), "ops")
		assert.ErrorIs(t, err, ErrNoDataRows)
	})
}

func TestFlipkartParser(t *testing.T) {
	t.Run("bad line number skips only that row", func(t *testing.T) {
		res, err := NewFlipkartParser().Parse([]byte(flipkartCSV), "ops")
		require.NoError(t, err)

		po := res.Single()
		require.Len(t, po.Lines, 4)
		var numbers []int
		for _, l := range po.Lines {
			numbers = append(numbers, l.LineNumber)
		}
		assert.Equal(t, []int{1, 2, 4, 5}, numbers)

		assert.Equal(t, 1, res.Skipped)
		require.Len(t, res.Warnings, 1)
		w := res.Warnings[0]
		assert.Equal(t, ErrCodeImportInvalidLineNo, w.Code)
		assert.Equal(t, 9, w.Row)
		assert.Equal(t, "S. no.", w.Column)
		assert.Equal(t, "x", w.Value)
	})

	t.Run("header block", func(t *testing.T) {
		res, err := NewFlipkartParser().Parse([]byte(flipkartCSV), "ops")
		require.NoError(t, err)

		h := res.Single().Header
		assert.Equal(t, "FKPO-1001", h.PONumber)
		assert.Equal(t, "Acme Foods", h.SupplierName)
		assert.Equal(t, "29ABCDE1234F1Z5", h.SupplierGSTIN)
		assert.Equal(t, "Flipkart WH, Bhiwandi", h.BillingAddress)
		assert.Equal(t, "Flipkart FC, Malur", h.ShippingAddress)
		assert.Equal(t, "Intra State", h.Attributes["nature_of_supply"])
		require.NotNil(t, h.OrderDate)
		assert.Equal(t, 2024, h.OrderDate.Year())
		require.NotNil(t, h.ExpiryDate)
		assert.Equal(t, 20, h.ExpiryDate.Day())
	})

	t.Run("totals exclude the skipped row", func(t *testing.T) {
		res, err := NewFlipkartParser().Parse([]byte(flipkartCSV), "ops")
		require.NoError(t, err)

		h := res.Single().Header
		assert.Equal(t, int64(17), h.TotalQuantity)
		assert.Equal(t, "400.00", h.TotalTaxableValue.StringFixed(2))
		assert.Equal(t, "60.00", h.TotalTaxAmount.StringFixed(2))
		assert.Equal(t, "460.00", h.TotalAmount.StringFixed(2))

		l := res.Single().Lines[0]
		assert.Equal(t, "FSN1", l.SKU)
		assert.Equal(t, "1905", l.HSNCode)
		assert.Equal(t, "18", l.IGSTRate.Decimal.String())
		assert.False(t, l.CGSTRate.Valid)
	})

	t.Run("no rows under the table header", func(t *testing.T) {
		data := `PO#,FKPO-1
S. no.,HSN/SA Code,Quantity
Total Quantity,0
`
		_, err := NewFlipkartParser().Parse([]byte(data), "ops")
		assert.ErrorIs(t, err, ErrNoDataRows)
		assert.True(t, IsParseError(err))
	})

	t.Run("missing po marker", func(t *testing.T) {
		data := `SUPPLIER NAME,Acme
S. no.,HSN/SA Code,Quantity
1,1905,4
`
		_, err := NewFlipkartParser().Parse([]byte(data), "ops")
		assert.ErrorIs(t, err, ErrPONumberNotFound)
	})

	t.Run("missing table", func(t *testing.T) {
		_, err := NewFlipkartParser().Parse([]byte("PO#,FKPO-1\nfoo,bar\n"), "ops")
		assert.ErrorIs(t, err, ErrTableNotFound)
	})

	t.Run("blank row ends the table", func(t *testing.T) {
		data := `PO#,FKPO-2
S. no.,HSN/SA Code,Quantity
1,1905,4
,,
3,1905,9
`
		res, err := NewFlipkartParser().Parse([]byte(data), "ops")
		require.NoError(t, err)
		assert.Len(t, res.Single().Lines, 1)
	})
}

func TestCityMallParser(t *testing.T) {
	res, err := NewCityMallParser().Parse([]byte(cityMallCSV), "ops")
	require.NoError(t, err)

	po := res.Single()
	assert.Equal(t, "CM-9001", po.Header.PONumber)
	assert.Equal(t, "Acme Foods", po.Header.SupplierName)
	assert.Equal(t, "Shop 4, Indore", po.Header.ShippingAddress)
	require.NotNil(t, po.Header.OrderDate)
	assert.Equal(t, time.March, po.Header.OrderDate.Month())

	require.Len(t, po.Lines, 2)
	assert.Equal(t, "10.00", po.Lines[0].CGSTAmount.Decimal.StringFixed(2))
	assert.Equal(t, "420.00", po.Lines[0].TotalAmount.Decimal.StringFixed(2))
	assert.Equal(t, "620.00", po.Header.TotalTaxableValue.StringFixed(2))
	assert.Equal(t, "31.00", po.Header.TotalTaxAmount.StringFixed(2))
	assert.Equal(t, "651.00", po.Header.TotalAmount.StringFixed(2))
}

func TestBlinkitParser(t *testing.T) {
	header := []interface{}{"PO Number", "Order Date", "Facility Name", "Item Id", "Name", "Quantity", "Landing Rate", "Total Amount"}

	t.Run("rows grouped by po number", func(t *testing.T) {
		data := buildXLSX(t, [][]interface{}{
			header,
			{"BL-1", 45292, "Gurgaon", "1001", "Atta", 5, "40", "200"},
			{"BL-2", 45292, "Noida", "1002", "Rice", 3, "60", "180"},
			{"BL-1", 45292, "Gurgaon", "1003", "Dal", 2, "90", "180"},
		})

		res, err := NewBlinkitParser().Parse(data, "ops")
		require.NoError(t, err)
		assert.Equal(t, FormatXLSX, res.Format)
		require.Len(t, res.Orders, 2)

		first := res.Orders[0]
		assert.Equal(t, "BL-1", first.Header.PONumber)
		require.Len(t, first.Lines, 2)
		assert.Equal(t, 1, first.Lines[0].LineNumber)
		assert.Equal(t, 2, first.Lines[1].LineNumber)
		assert.Equal(t, "1003", first.Lines[1].SKU)
		assert.Equal(t, int64(7), first.Header.TotalQuantity)
		assert.Equal(t, "380.00", first.Header.TotalAmount.StringFixed(2))
		assert.Equal(t, "Gurgaon", first.Header.DeliveryLocation)
		require.NotNil(t, first.Header.OrderDate)
		assert.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), *first.Header.OrderDate)

		second := res.Orders[1]
		assert.Equal(t, "BL-2", second.Header.PONumber)
		assert.Equal(t, "Noida", second.Header.DeliveryLocation)
		assert.Len(t, second.Lines, 1)
	})

	t.Run("missing po number gets a synthetic one", func(t *testing.T) {
		data := buildXLSX(t, [][]interface{}{
			header,
			{"", "", "Gurgaon", "1001", "Atta", 5, "40", "200"},
			{"", "", "Gurgaon", "1002", "Rice", 1, "60", "60"},
		})

		res, err := NewBlinkitParser(WithClock(fixedClock)).Parse(data, "ops")
		require.NoError(t, err)
		require.Len(t, res.Orders, 1)
		assert.Equal(t, "BLINKIT_1700000000000", res.Orders[0].Header.PONumber)
		assert.Len(t, res.Orders[0].Lines, 2)

		require.Len(t, res.Warnings, 1)
		assert.Equal(t, ErrCodeImportSyntheticPONumber, res.Warnings[0].Code)
		assert.Zero(t, res.Skipped)
	})

	t.Run("unreadable quantity skips the row", func(t *testing.T) {
		data := buildXLSX(t, [][]interface{}{
			header,
			{"BL-3", "", "", "1001", "Atta", "five", "40", ""},
			{"BL-3", "", "", "1002", "Rice", 2, "60", ""},
		})

		res, err := NewBlinkitParser().Parse(data, "ops")
		require.NoError(t, err)
		require.Len(t, res.Orders, 1)
		assert.Len(t, res.Orders[0].Lines, 1)
		assert.Equal(t, 1, res.Skipped)
		assert.Equal(t, ErrCodeImportInvalidQuantity, res.Warnings[0].Code)
		assert.Equal(t, "120.00", res.Orders[0].Header.TotalAmount.StringFixed(2))
	})
}

func TestSwiggyParser_SpreadsheetML(t *testing.T) {
	data := spreadsheetML([][]string{
		{"PO No", "SW-42"},
		{"PO Date", "05-02-2024"},
		{"Vendor Name", "Acme Foods"},
		{""},
		{"S.No", "Item Code", "Item Description", "Quantity", "Unit Cost", "Total Value"},
		{"1", "IC1", "Ghee", "2", "500", "525"},
		{"2", "IC2", "Oil", "1", "200", "210"},
		{"Total Quantity", "3"},
		{"Net amount", "800"},
	})

	res, err := NewSwiggyParser().Parse(data, "ops")
	require.NoError(t, err)
	assert.Equal(t, FormatSpreadsheetML, res.Format)

	po := res.Single()
	assert.Equal(t, "SW-42", po.Header.PONumber)
	assert.Equal(t, "Acme Foods", po.Header.SupplierName)
	assert.Len(t, po.Lines, 2)
	assert.Equal(t, int64(3), po.Header.TotalQuantity)
	assert.Equal(t, "735.00", po.Header.TotalAmount.StringFixed(2), "computed total is kept")

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, ErrCodeImportTotalsMismatch, res.Warnings[0].Code)
	assert.Equal(t, "total_amount", res.Warnings[0].Column)
	assert.Zero(t, res.Skipped)
}

func TestBigBasketParser_StatedTotalFillsZeroSum(t *testing.T) {
	data := buildXLSX(t, [][]interface{}{
		{"PO Number", "BB-77"},
		{"SUPPLIER NAME", "Acme Foods"},
		{},
		{"S.No", "SKU Code", "Description", "Quantity"},
		{1, "BB1", "Jaggery", 4},
		{2, "BB2", "Honey", 6},
		{"Total Quantity", 10},
		{"Net amount", "1,250.00"},
	})

	res, err := NewBigBasketParser().Parse(data, "ops")
	require.NoError(t, err)

	h := res.Single().Header
	assert.Equal(t, "BB-77", h.PONumber)
	assert.Equal(t, int64(10), h.TotalQuantity)
	assert.Equal(t, "1250.00", h.TotalAmount.StringFixed(2))
	assert.Empty(t, res.Warnings)
}

func TestAmazonParser(t *testing.T) {
	data := `PO,Vendor,Ship to location,ASIN,External Id,Title,Window start,Window end,Requested quantity,Unit Cost,Model number
AMZ1,ACMEF,BLR7,B0001,8901234567890,Green Tea,2024-02-01,2024-02-08,12,150.00,GT-100
AMZ2,ACMEF,DEL4,B0002,8901234567891,Black Tea,2024-02-02,2024-02-09,6,120.00,BT-200
AMZ1,ACMEF,BLR7,B0003,8901234567892,Masala Tea,2024-02-01,2024-02-08,3,180.00,MT-300
`
	res, err := NewAmazonParser().Parse([]byte(data), "ops")
	require.NoError(t, err)
	require.Len(t, res.Orders, 2)

	po := res.Orders[0]
	assert.Equal(t, "AMZ1", po.Header.PONumber)
	assert.Equal(t, "BLR7", po.Header.DeliveryLocation)
	require.NotNil(t, po.Header.OrderDate)
	require.NotNil(t, po.Header.ExpiryDate)
	assert.Equal(t, 1, po.Header.OrderDate.Day())
	assert.Equal(t, 8, po.Header.ExpiryDate.Day())
	assert.Equal(t, int64(15), po.Header.TotalQuantity)
	assert.Equal(t, "2340.00", po.Header.TotalTaxableValue.StringFixed(2))
	assert.Equal(t, "GT-100", po.Lines[0].Attributes["model_number"])
	assert.Equal(t, "8901234567890", po.Lines[0].EAN)
}

func TestDealshareParser(t *testing.T) {
	data := buildXLSX(t, [][]interface{}{
		{"PO Number", "PO Date", "SKU ID", "Product Name", "Quantity", "Buying Price"},
		{"DS-1", "01/02/2024", "S1", "Soap", 10, "20"},
		{"DS-1", "01/02/2024", "S2", "Shampoo", 2, "150"},
	})
	res, err := NewDealshareParser().Parse(data, "ops")
	require.NoError(t, err)

	po := res.Single()
	assert.Equal(t, "DS-1", po.Header.PONumber)
	assert.Equal(t, "500.00", po.Header.TotalTaxableValue.StringFixed(2))
	assert.Equal(t, "500.00", po.Header.TotalAmount.StringFixed(2))
}

func TestZomatoAndJioMartParsers(t *testing.T) {
	zomato := `PO Number,HP-12
Vendor Name,Acme Foods
Outlet Address,"Koramangala, Bengaluru"
S No,Product Name,Quantity,Unit Price
1,Paneer,5,300
`
	res, err := NewZomatoParser().Parse([]byte(zomato), "ops")
	require.NoError(t, err)
	assert.Equal(t, "HP-12", res.Single().Header.PONumber)
	assert.Equal(t, "Koramangala, Bengaluru", res.Single().Header.ShippingAddress)
	assert.Equal(t, "1500.00", res.Single().Header.TotalAmount.StringFixed(2))

	jio := `PO Number,JM-3
Delivery Date,10-03-2024
Sr No,Article Code,Article Description,Quantity,Basic Cost
1,A1,Salt,20,18
2,A2,Sugar,10,42
`
	res, err = NewJioMartParser().Parse([]byte(jio), "ops")
	require.NoError(t, err)
	h := res.Single().Header
	assert.Equal(t, "JM-3", h.PONumber)
	require.NotNil(t, h.DeliveryDate)
	assert.Equal(t, 10, h.DeliveryDate.Day())
	assert.Equal(t, int64(30), h.TotalQuantity)
}

func TestParse_UndecodableInput(t *testing.T) {
	_, err := NewSwiggyParser().Parse([]byte{0xD0, 0xCF, 0x11, 0xE0, 0, 0}, "ops")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.True(t, IsParseError(err))

	_, err = NewSwiggyParser().Parse(nil, "ops")
	assert.ErrorIs(t, err, ErrEmptyFile)
}
