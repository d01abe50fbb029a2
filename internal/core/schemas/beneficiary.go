package schemas

import "github.com/JonMunkholm/BRMReports/internal/core"

func init() {
	registerBeneficiary()
}

// BeneficiaryKeyColumn groups beneficiary rows by relationship manager.
const BeneficiaryKeyColumn = "BRM"

func registerBeneficiary() {
	core.Register(core.Schema{
		Key:       core.DefaultSchemaKey,
		Label:     "Beneficiary Data",
		KeyColumn: BeneficiaryKeyColumn,
		Fields: []core.FieldSpec{
			{Name: "Sr.No", Type: core.FieldText},
			{Name: "Client Name", Type: core.FieldText},
			{Name: "TPA", Type: core.FieldText},
			{Name: "Plan", Type: core.FieldText},
			{Name: "Conversion Status", Type: core.FieldText},
			{Name: "Broker Company Name", Type: core.FieldText},
			{Name: "Broker Name", Type: core.FieldText},
			{Name: "Agent Email ID", Type: core.FieldText},
			{Name: "BRM Name ", Type: core.FieldText}, // trailing space is part of the header
			{Name: "policy_start_date", Type: core.FieldDate},
			{Name: "Quote Creation Date", Type: core.FieldDate},
			{Name: "Quoted Premium", Type: core.FieldNumeric},
			{Name: "No of members Covered", Type: core.FieldNumeric},
		},
	})
}
