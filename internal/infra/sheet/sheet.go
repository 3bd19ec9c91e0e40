// Package sheet lê e escreve planilhas de leads em CSV, com o mesmo
// dicionário de colunas da planilha que as academias já usam.
package sheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/tatamedev/tatame-crm/internal/entity"
)

// columnMap liga cabeçalhos reconhecidos (já normalizados: minúsculos e
// sem acento) a campos do lead. Colunas fora do dicionário são ignoradas.
var columnMap = map[string]string{
	"nome":         "name",
	"name":         "name",
	"telefone":     "phone",
	"phone":        "phone",
	"celular":      "phone",
	"whatsapp":     "phone",
	"tipo":         "type",
	"type":         "type",
	"perfil":       "type",
	"origem":       "origin",
	"origin":       "origin",
	"status":       "status",
	"data":         "scheduledDate",
	"data da aula": "scheduledDate",
	"horario":      "scheduledTime",
}

// deaccent cobre os acentos do português presentes em cabeçalhos reais
// (Horário, Descrição etc.); não é uma transliteração Unicode geral.
var deaccent = strings.NewReplacer(
	"á", "a", "à", "a", "ã", "a", "â", "a",
	"é", "e", "ê", "e",
	"í", "i",
	"ó", "o", "õ", "o", "ô", "o",
	"ú", "u", "ü", "u",
	"ç", "c",
)

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff") // BOM do Excel
	return deaccent.Replace(strings.ToLower(strings.TrimSpace(h)))
}

// ParseLeads lê o CSV e devolve uma linha por lead reconhecido.
// Linhas sem nome são descartadas; os defaults de importação (tipo,
// origem Planilha, status) ficam a cargo da store.
func ParseLeads(r io.Reader) ([]entity.Lead, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("a planilha está vazia")
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao ler planilha: %w", err)
	}

	// Posição de cada coluna reconhecida.
	fields := make([]string, len(header))
	recognized := 0
	for i, h := range header {
		if field, ok := columnMap[normalizeHeader(h)]; ok {
			fields[i] = field
			recognized++
		}
	}
	if recognized == 0 {
		return nil, fmt.Errorf("nenhuma coluna reconhecida na planilha")
	}

	var leads []entity.Lead
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("erro ao ler planilha: %w", err)
		}

		var lead entity.Lead
		for i, value := range record {
			if i >= len(fields) || fields[i] == "" {
				continue
			}
			value = strings.TrimSpace(value)
			switch fields[i] {
			case "name":
				lead.Name = value
			case "phone":
				lead.Phone = value
			case "type":
				lead.Type = value
			case "origin":
				lead.Origin = value
			case "status":
				lead.Status = value
			case "scheduledDate":
				lead.ScheduledDate = value
			case "scheduledTime":
				lead.ScheduledTime = value
			}
		}

		if lead.Name == "" {
			continue
		}
		leads = append(leads, lead)
	}

	return leads, nil
}

// exportHeader é o conjunto de colunas esperado pelas planilhas das academias.
var exportHeader = []string{"Nome", "Telefone", "Tipo", "Origem", "Status", "Data Aula", "Horário", "Criado em"}

// WriteLeads escreve a coleção no formato de exportação (datas pt-BR).
func WriteLeads(w io.Writer, leads []entity.Lead) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(exportHeader); err != nil {
		return fmt.Errorf("erro ao escrever cabeçalho: %w", err)
	}

	for _, l := range leads {
		createdAt := ""
		if !l.CreatedAt.IsZero() {
			createdAt = l.CreatedAt.Format("02/01/2006")
		}
		record := []string{l.Name, l.Phone, l.Type, l.Origin, l.Status, l.ScheduledDate, l.ScheduledTime, createdAt}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("erro ao escrever linha: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// ExportFileName sugere um nome de arquivo datado para o download.
func ExportFileName(prefix string, now time.Time) string {
	if prefix == "" {
		prefix = "leads"
	}
	return fmt.Sprintf("%s-%s.csv", prefix, now.Format("2006-01-02"))
}
