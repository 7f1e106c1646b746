package poimport

// Column aliases shared by most vendor exports. Vendors list their own
// names first so the more specific alias wins when both are present.

func col(f field, aliases ...string) column {
	return column{field: f, aliases: aliases}
}

func attrCol(key string, aliases ...string) column {
	return column{attr: key, aliases: aliases}
}

func label(f field, labels ...string) sentinel {
	return sentinel{field: f, labels: labels}
}

func attrLabel(key string, labels ...string) sentinel {
	return sentinel{attr: key, labels: labels}
}

// gstColumns covers the CGST/SGST/IGST/cess rate and amount pairs.
// Rates are usually headed "X %" or "X Rate"; amounts "X Amt" or "X Amount".
func gstColumns() []column {
	return []column{
		col(fieldCGSTRate, "CGST %", "CGST Rate", "CGST Rate %", "CGST(%)"),
		col(fieldCGSTAmount, "CGST Amt", "CGST Amount", "CGST Value", "CGST"),
		col(fieldSGSTRate, "SGST %", "SGST Rate", "SGST Rate %", "SGST(%)", "UTGST %", "SGST/UTGST %"),
		col(fieldSGSTAmount, "SGST Amt", "SGST Amount", "SGST Value", "SGST", "UTGST Amt", "SGST/UTGST Amt"),
		col(fieldIGSTRate, "IGST %", "IGST Rate", "IGST Rate %", "IGST(%)"),
		col(fieldIGSTAmount, "IGST Amt", "IGST Amount", "IGST Value", "IGST"),
		col(fieldCessRate, "Cess %", "CESS Rate", "Cess Rate %", "Cess(%)"),
		col(fieldCessAmount, "Cess Amt", "CESS Amount", "Cess Value", "Cess"),
	}
}

func withGST(cols ...column) []column {
	return append(cols, gstColumns()...)
}
