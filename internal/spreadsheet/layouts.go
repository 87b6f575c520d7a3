package spreadsheet

import "sort"

const (
	LayoutProducts    = "produtos"
	LayoutCustomers   = "clientes"
	LayoutContacts    = "contatos"
	LayoutInventory   = "inventario"
	LayoutReceivables = "contas_receber"
	LayoutPayables    = "contas_pagar"
)

// Columns used to keep product variations together when splitting.
const (
	ColumnProductType = "Tipo do produto"
	ColumnParentCode  = "Código do pai"
	ColumnSKU         = "Código (SKU)"
)

// expectedLayouts holds the import layouts accepted by the ERP, one per
// document type. Column names are compared exactly.
var expectedLayouts = map[string][]string{
	LayoutProducts: {
		"ID",
		"Código (SKU)",
		"Descrição",
		"Unidade",
		"Classificação fiscal",
		"Origem",
		"Preço",
		"Valor IPI fixo",
		"Observações",
		"Situação",
		"Estoque",
		"Preço de custo",
		"Código do fornecedor",
		"Fornecedor",
		"Localização",
		"Estoque máximo",
		"Estoque mínimo",
		"Peso líquido (Kg)",
		"Peso bruto (Kg)",
		"GTIN/EAN",
		"GTIN/EAN da embalagem",
		"Largura do produto",
		"Altura do produto",
		"Profundidade do produto",
		"Descrição complementar",
		"Unidade por caixa",
		"Tipo do produto",
		"Código do pai",
		"Variações",
		"Marca",
		"Categoria do produto",
	},
	LayoutCustomers: {
		"ID",
		"Código",
		"Nome",
		"Fantasia",
		"Endereço",
		"Número",
		"Complemento",
		"Bairro",
		"CEP",
		"Cidade",
		"UF",
		"Telefone",
		"Celular",
		"E-mail",
		"Tipo pessoa",
		"CPF/CNPJ",
		"IE/RG",
		"Situação",
		"Observações",
	},
	LayoutContacts: {
		"ID",
		"Código",
		"Nome",
		"Fantasia",
		"Tipo pessoa",
		"CPF/CNPJ",
		"IE/RG",
		"Endereço",
		"Número",
		"Complemento",
		"Bairro",
		"CEP",
		"Cidade",
		"UF",
		"Telefone",
		"Celular",
		"E-mail",
		"Tipos de contato",
		"Situação",
		"Observações",
	},
	LayoutInventory: {
		"ID",
		"Código (SKU)",
		"Descrição",
		"Unidade",
		"Localização",
		"Depósito",
		"Estoque",
		"Preço de custo",
	},
	LayoutReceivables: {
		"ID",
		"Cliente",
		"CPF/CNPJ",
		"Número do documento",
		"Data de emissão",
		"Data de vencimento",
		"Valor",
		"Histórico",
		"Categoria",
		"Forma de recebimento",
		"Situação",
		"Data de recebimento",
		"Valor recebido",
		"Observações",
	},
	LayoutPayables: {
		"ID",
		"Fornecedor",
		"CPF/CNPJ",
		"Número do documento",
		"Data de emissão",
		"Data de vencimento",
		"Valor",
		"Histórico",
		"Categoria",
		"Forma de pagamento",
		"Situação",
		"Data de pagamento",
		"Valor pago",
		"Observações",
	},
}

// ExpectedLayout returns a copy of the columns registered for name.
func ExpectedLayout(name string) ([]string, bool) {
	cols, ok := expectedLayouts[name]
	if !ok {
		return nil, false
	}
	out := make([]string, len(cols))
	copy(out, cols)
	return out, true
}

func LayoutNames() []string {
	names := make([]string, 0, len(expectedLayouts))
	for name := range expectedLayouts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
