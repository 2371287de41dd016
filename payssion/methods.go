package payssion

// paymentMethods maps Payssion payment method codes to display names.
// Loaded once at process start and used only for presentation.
var paymentMethods = map[string]string{
	"alfaclick_ru":     "Alfa-Click",
	"alipay_cn":        "Alipay",
	"bitcoin":          "Bitcoin",
	"boleto_br":        "Boleto",
	"yamoneyac":        "BankCard (Yandex.Money)",
	"yamoneygp":        "Cash (Yandex.Money)",
	"cashu":            "CashU",
	"dotpay_pl":        "DotPay",
	"euroset_ru":       "Euroset",
	"faktura_ru":       "Faktura",
	"ideal_nl":         "iDeal",
	"molpay":           "MOLPay",
	"moneta_ru":        "Moneta",
	"onecard":          "OneCard",
	"openbucks":        "Openbucks",
	"oxxo_mx":          "Oxxo",
	"paysafecard":      "Paysafecard",
	"poli_au":          "PoliPayment AU",
	"poli_nz":          "PoliPayment NZ",
	"promsvyazbank_ru": "Promsvyazbank",
	"qiwi":             "QIWI",
	"banktransfer_ru":  "Russian Bank Transfer",
	"rsb_ru":           "Russian Standard Bank",
	"russianpost_ru":   "Russian Post Centres",
	"sberbank_ru":      "Sberbank",
	"sofort":           "SOFORT Banking",
	"trustpay":         "Trustpay",
	"unionpay":         "Unionpay",
	"yamoney":          "Yandex.Money",
	"webmoney":         "Webmoney",
}

// MethodName returns the display name for a payment method code.
func MethodName(code string) (string, bool) {
	name, ok := paymentMethods[code]
	return name, ok
}

// Methods returns a copy of the full method catalog.
func Methods() map[string]string {
	out := make(map[string]string, len(paymentMethods))
	for code, name := range paymentMethods {
		out[code] = name
	}
	return out
}
