package validator

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// ErrNotAnObject is returned by DecodeInvoiceData for JSON that is not an object.
var ErrNotAnObject = errors.New("invoice data must be a JSON object")

// DecodeInvoiceData reads extracted invoice fields from loosely typed JSON.
// Keys may be snake_case or camelCase. Amounts may be numbers or numeric
// strings. Values of the wrong type are left unset and recorded in
// TypeMismatches so the format check can report them.
func DecodeInvoiceData(raw []byte) (*InvoiceData, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("invalid JSON: %w", ErrNotAnObject)
	}
	return DecodeInvoiceResult(gjson.ParseBytes(raw))
}

// DecodeInvoiceResult is DecodeInvoiceData for an already parsed value.
func DecodeInvoiceResult(obj gjson.Result) (*InvoiceData, error) {
	if !obj.IsObject() {
		return nil, ErrNotAnObject
	}
	d := &InvoiceData{}
	dec := &decoder{data: d}

	d.InvoiceNumber = dec.str(obj, FieldInvoiceNumber, "invoiceNumber")
	d.InvoiceDate = dec.str(obj, FieldInvoiceDate, "invoiceDate")
	d.DueDate = dec.str(obj, FieldDueDate, "dueDate")
	d.TotalAmount = dec.num(obj, FieldTotalAmount, "totalAmount")
	d.TaxAmount = dec.num(obj, FieldTaxAmount, "taxAmount")
	d.SupplierName = dec.str(obj, FieldSupplierName, "supplierName")
	d.BillTo = dec.str(obj, FieldBillTo, "billTo")
	d.Currency = dec.str(obj, FieldCurrency, "currency")
	d.LineItems = dec.items(obj, FieldLineItems, "lineItems")

	return d, nil
}

type decoder struct {
	data *InvoiceData
}

func (dec *decoder) mismatch(path string) {
	dec.data.TypeMismatches = append(dec.data.TypeMismatches, path)
}

func lookup(obj gjson.Result, keys ...string) gjson.Result {
	for _, k := range keys {
		if v := obj.Get(k); v.Exists() {
			return v
		}
	}
	return gjson.Result{}
}

func (dec *decoder) str(obj gjson.Result, field, alias string) *string {
	v := lookup(obj, field, alias)
	switch v.Type {
	case gjson.Null:
		return nil
	case gjson.String:
		return String(v.Str)
	default:
		dec.mismatch(field)
		return nil
	}
}

func (dec *decoder) num(obj gjson.Result, field, alias string) *float64 {
	f, ok, present := number(lookup(obj, field, alias))
	if !present {
		return nil
	}
	if !ok {
		dec.mismatch(field)
		return nil
	}
	return Float(f)
}

// number converts a JSON number or numeric string. present is false for
// missing, null and blank values. NaN and infinities, including numbers that
// overflow float64, are not ok.
func number(v gjson.Result) (f float64, ok, present bool) {
	switch v.Type {
	case gjson.Null:
		return 0, false, false
	case gjson.Number:
		if !finite(v.Num) {
			return 0, false, true
		}
		return v.Num, true, true
	case gjson.String:
		s := strings.TrimSpace(strings.ReplaceAll(v.Str, ",", ""))
		if s == "" {
			return 0, false, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || !finite(f) {
			return 0, false, true
		}
		return f, true, true
	default:
		return 0, false, true
	}
}

func (dec *decoder) items(obj gjson.Result, field, alias string) []LineItem {
	v := lookup(obj, field, alias)
	if v.Type == gjson.Null {
		return nil
	}
	if !v.IsArray() {
		dec.mismatch(field)
		return nil
	}

	var items []LineItem
	for i, el := range v.Array() {
		path := fmt.Sprintf("%s[%d]", field, i)
		if !el.IsObject() {
			dec.mismatch(path)
			continue
		}
		item := LineItem{}
		if desc := el.Get("description"); desc.Exists() {
			if desc.Type == gjson.String {
				item.Description = desc.Str
			} else if desc.Type != gjson.Null {
				dec.mismatch(path + ".description")
			}
		}
		item.Quantity = dec.itemNum(el, path, "quantity", "quantity")
		item.UnitPrice = dec.itemNum(el, path, "unit_price", "unitPrice")
		item.TotalPrice = dec.itemNum(el, path, "total_price", "totalPrice")
		items = append(items, item)
	}
	return items
}

func (dec *decoder) itemNum(el gjson.Result, path, key, alias string) float64 {
	f, ok, present := number(lookup(el, key, alias))
	if present && !ok {
		dec.mismatch(path + "." + key)
	}
	return f
}
