package catalog

// Fixtures returns a fresh copy of the built-in reference data used when no
// database is configured.
func Fixtures() map[Kind][]Option {
	out := make(map[Kind][]Option, len(fixtures))
	for k, opts := range fixtures {
		cp := make([]Option, len(opts))
		copy(cp, opts)
		out[k] = cp
	}
	return out
}

var fixtures = map[Kind][]Option{
	KindCIAP2: {
		{Code: "A01", Description: "Dor generalizada/múltipla"},
		{Code: "A02", Description: "Arrepios"},
		{Code: "A03", Description: "Febre"},
		{Code: "A04", Description: "Debilidade/cansaço geral"},
		{Code: "A05", Description: "Sentir-se doente"},
		{Code: "A08", Description: "Inchaço"},
		{Code: "A11", Description: "Dor torácica NE"},
		{Code: "A98", Description: "Medicina preventiva/manutenção da saúde"},
		{Code: "B02", Description: "Gânglio linfático aumentado/doloroso"},
		{Code: "D01", Description: "Dor abdominal geral/cólica"},
		{Code: "D02", Description: "Dor de estômago"},
		{Code: "D06", Description: "Outras dores abdominais localizadas"},
		{Code: "D09", Description: "Náusea"},
		{Code: "D10", Description: "Vômito"},
		{Code: "D11", Description: "Diarreia"},
		{Code: "D12", Description: "Obstipação"},
		{Code: "F01", Description: "Olho doloroso"},
		{Code: "F02", Description: "Olho vermelho"},
		{Code: "H01", Description: "Dor de ouvido"},
		{Code: "K01", Description: "Dor atribuída ao coração"},
		{Code: "K04", Description: "Palpitações/percepção dos batimentos cardíacos"},
		{Code: "K85", Description: "Pressão arterial elevada"},
		{Code: "K86", Description: "Hipertensão sem complicações"},
		{Code: "L01", Description: "Sinais/sintomas do pescoço"},
		{Code: "L02", Description: "Sinais/sintomas da região dorsal"},
		{Code: "L03", Description: "Sinais/sintomas da região lombar"},
		{Code: "L15", Description: "Sinais/sintomas do joelho"},
		{Code: "N01", Description: "Cefaleia"},
		{Code: "N17", Description: "Vertigem/tontura"},
		{Code: "P01", Description: "Sensação de ansiedade/nervosismo/tensão"},
		{Code: "P06", Description: "Perturbação do sono"},
		{Code: "R02", Description: "Dificuldade respiratória/dispneia"},
		{Code: "R05", Description: "Tosse"},
		{Code: "R07", Description: "Espirros/congestão nasal"},
		{Code: "R21", Description: "Sinais/sintomas da garganta"},
		{Code: "R74", Description: "Infecção aguda do aparelho respiratório superior"},
		{Code: "S02", Description: "Prurido"},
		{Code: "S06", Description: "Erupção cutânea localizada"},
		{Code: "T90", Description: "Diabetes não insulino-dependente"},
		{Code: "U01", Description: "Disúria/micção dolorosa"},
		{Code: "U02", Description: "Micção frequente/urgência urinária"},
		{Code: "W78", Description: "Gravidez"},
	},
	KindProcedures: {
		{Code: "0101040024", Description: "Avaliação antropométrica", ShortCode: "01.01.04.002-4"},
		{Code: "0301100039", Description: "Aferição de pressão arterial", ShortCode: "03.01.10.003-9"},
		{Code: "0214010015", Description: "Glicemia capilar", ShortCode: "02.14.01.001-5"},
		{Code: "0301100284", Description: "Curativo simples", ShortCode: "03.01.10.028-4"},
		{Code: "0301100179", Description: "Inalação/nebulização", ShortCode: "03.01.10.017-9"},
		{Code: "0301100101", Description: "Administração de medicamentos por via intramuscular", ShortCode: "03.01.10.010-1"},
		{Code: "0301100152", Description: "Retirada de pontos de cirurgias básicas", ShortCode: "03.01.10.015-2"},
		{Code: "0201020041", Description: "Coleta de material para exame laboratorial", ShortCode: "02.01.02.004-1"},
		{Code: "0214010058", Description: "Teste rápido de gravidez", ShortCode: "02.14.01.005-8"},
		{Code: "0301040079", Description: "Escuta inicial/orientação (acolhimento a demanda espontânea)", ShortCode: "03.01.04.007-9"},
	},
	KindProfessionals: {
		{Code: "P001", Description: "Ana Paula Souza (Enfermeira)", ShortCode: "223505"},
		{Code: "P002", Description: "Carlos Eduardo Lima (Médico de família)", ShortCode: "225142"},
		{Code: "P003", Description: "Fernanda Ribeiro (Técnica de enfermagem)", ShortCode: "322245"},
		{Code: "P004", Description: "João Batista Araújo (Cirurgião-dentista)", ShortCode: "223293"},
		{Code: "P005", Description: "Mariana Costa (Médica de família)", ShortCode: "225142"},
	},
	KindTeams: {
		{Code: "0001234561", Description: "ESF Vila Nova", ShortCode: "ESF"},
		{Code: "0001234562", Description: "ESF Centro", ShortCode: "ESF"},
		{Code: "0001234563", Description: "eSB Centro (Saúde Bucal)", ShortCode: "ESB"},
		{Code: "0001234564", Description: "eMulti Regional", ShortCode: "EMULTI"},
	},
	KindServiceTypes: {
		{Code: "consulta", Description: "Consulta"},
		{Code: "escuta_inicial", Description: "Escuta inicial"},
		{Code: "odontologia", Description: "Odontologia"},
		{Code: "vacina", Description: "Vacina"},
		{Code: "procedimentos", Description: "Procedimentos"},
		{Code: "curativo", Description: "Curativo"},
		{Code: "exames", Description: "Coleta de exames"},
		{Code: "nebulizacao", Description: "Inalação/nebulização"},
		{Code: "injecao", Description: "Administração de medicamentos"},
	},
}
