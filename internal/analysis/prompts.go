package analysis

import "fmt"

var invoiceKeys = []string{
	"totalInvoices",
	"paidInvoices",
	"unpaidInvoices",
	"totalRevenue",
	"averageInvoiceAmount",
	"commonCurrencies",
	"patterns",
}

var orderKeys = []string{
	"topProducts",
	"topStore",
	"avgSpending",
	"patterns",
}

func invoicesPrompt(jsonData string) string {
	return fmt.Sprintf(`You are a business analyst. Analyze the following JSON array of invoices and respond EXCLUSIVELY with valid JSON (UTF-8, no comments, no text outside the JSON).

Input data (JSON):
%s

Return exactly this structure:

{
  "totalInvoices": int,
  "paidInvoices": int,
  "unpaidInvoices": int,
  "totalRevenue": double,
  "averageInvoiceAmount": double,
  "commonCurrencies": [string],
  "patterns": [string]
}

Calculations:
- totalInvoices: total number of invoices.
- paidInvoices: invoices with isPaid == true.
- unpaidInvoices: invoices with isPaid == false.
- totalRevenue: sum of the amounts of the PAID invoices. Use total if present, otherwise subtotal + tax.
- averageInvoiceAmount: average amount across all invoices (same criterion).
- commonCurrencies: most frequent currencies, descending by frequency.
- patterns: useful observations such as:
  - "X%% of invoices are paid."
  - "The most used currency is <CURRENCY>."
  - "Atypical amounts or date-driven variations were detected (if any)."

Output rules:
- Return ONLY the JSON, no additional text.
- Use a dot as the decimal separator.
- If you cannot build the JSON (insufficient data, format error, etc.), respond ONLY with:
error`, jsonData)
}

func ordersPrompt(jsonData string) string {
	return fmt.Sprintf(`You are an expert retail data analyst.
Analyze the following order, product and store data (JSON):
%s

You must respond EXCLUSIVELY in JSON with this structure:
{
  "topProducts": {"name": string, "unitSold": int, "totalRevenue": double},
  "topStore": {"name": string, "totalSales": double, "shareOfTotalSales": double},
  "avgSpending": double,
  "patterns": [string]
}
In the patterns section add analysis such as which store sells the most and
which products bring in the most money per order.
If for any reason you cannot produce a valid response (missing data or a format error), respond ONLY with the text: error.
Do not greet, do not explain, do not add comments or any additional text.`, jsonData)
}
