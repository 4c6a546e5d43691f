package models

type Category string

const (
	CatOpeningCapital Category = "Modal Awal"
	CatFoodSales      Category = "Penjualan (Pangan)"
	CatAgentServices  Category = "Jasa (Agen Bank/PPOB)"
	CatStockPurchase  Category = "Belanja Stok Barang"
	CatPayroll        Category = "Gaji & Operasional"
	CatAssets         Category = "Inventaris/Aset"
	CatOther          Category = "Lain-lain"
)

// Categories is the fixed list, in display order.
var Categories = []Category{
	CatOpeningCapital,
	CatFoodSales,
	CatAgentServices,
	CatStockPurchase,
	CatPayroll,
	CatAssets,
	CatOther,
}

func (c Category) IsValid() bool {
	for _, k := range Categories {
		if c == k {
			return true
		}
	}
	return false
}
