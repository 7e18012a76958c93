package sensor

// metricSpec is one row of the static metric tables: pure metadata, no
// computed fields.
type metricSpec struct {
	Key   string
	Name  string
	Icon  string
	Unit  string
	Class DeviceClass
}

// globalMetrics enumerates every scalar the BMU reports for the whole
// system. Order is the emission order of the projector.
var globalMetrics = []metricSpec{
	{"soc", "State of Charge", "mdi:battery", "%", ClassNone},
	{"power", "Power", "mdi:flash", "W", ClassPower},
	{"max_voltage", "Max Voltage", "mdi:current-ac", "V", ClassVoltage},
	{"min_voltage", "Min Voltage", "mdi:current-ac", "V", ClassVoltage},
	{"current", "Current", "mdi:current-dc", "A", ClassCurrent},
	{"battery_voltage", "Battery Voltage", "mdi:car-battery", "V", ClassVoltage},
	{"max_temperature", "Max Temperature", "mdi:thermometer", "°C", ClassTemperature},
	{"min_temperature", "Min Temperature", "mdi:thermometer", "°C", ClassTemperature},
	{"battery_temperature", "Battery Temperature", "mdi:thermometer", "°C", ClassTemperature},
	{"voltage_difference", "Voltage Difference", "mdi:delta", "V", ClassVoltage},
	{"soh", "State of Health", "mdi:heart-pulse", "%", ClassNone},
	{"serial_number", "Serial Number", "mdi:identifier", "", ClassNone},
	{"bmu_firmware", "BMU Firmware", "mdi:chip", "", ClassNone},
	{"bms_firmware", "BMS Firmware", "mdi:chip", "", ClassNone},
	{"modules", "Modules", "mdi:counter", "", ClassNone},
	{"module_cell_count", "Module Cell Count", "mdi:counter", "", ClassNone},
	{"module_cell_temp_count", "Module Cell Temp Count", "mdi:counter", "", ClassNone},
	{"towers", "Towers", "mdi:counter", "", ClassNone},
	{"grid_type", "Grid Type", "mdi:transmission-tower", "", ClassNone},
	{"error_number", "Error Number", "mdi:alert-circle", "", ClassNone},
	{"error_string", "Error String", "mdi:alert-circle", "", ClassNone},
	{"param_t", "Param T", "mdi:information-outline", "", ClassNone},
	{"output_voltage", "Output Voltage", "mdi:current-ac", "V", ClassVoltage},
	{"charge_total", "Charge Total", "mdi:battery-charging", "Ah", ClassNone},
	{"discharge_total", "Discharge Total", "mdi:battery-charging", "Ah", ClassNone},
	{"eta", "ETA", "mdi:timer", "", ClassNone},
	{"battery_type_from_serial", "Battery Type From Serial", "mdi:information-outline", "", ClassNone},
	{"battery_type", "Battery Type", "mdi:information-outline", "", ClassNone},
	{"inverter_type", "Inverter Type", "mdi:information-outline", "", ClassNone},
	{"number_of_cells", "Number of Cells", "mdi:counter", "", ClassNone},
	{"number_of_temperatures", "Number of Temperatures", "mdi:counter", "", ClassNone},
}

// towerMetrics enumerates the per-tower scalar attributes.
var towerMetrics = []metricSpec{
	{"balancing_status", "Balancing Status", "mdi:scale-balance", "", ClassNone},
	{"balancing_count", "Balancing Count", "mdi:counter", "", ClassNone},
	{"max_cell_voltage_mv", "Max Cell Voltage", "mdi:current-ac", "mV", ClassVoltage},
	{"min_cell_voltage_mv", "Min Cell Voltage", "mdi:current-ac", "mV", ClassVoltage},
	{"max_cell_voltage_cell", "Voltage Max Cell No", "mdi:counter", "", ClassNone},
	{"min_cell_voltage_cell", "Voltage Min Cell No", "mdi:counter", "", ClassNone},
	{"max_cell_temp", "Temperature Max Cell", "mdi:thermometer", "°C", ClassTemperature},
	{"min_cell_temp", "Temperature Min Cell", "mdi:thermometer", "°C", ClassTemperature},
	{"max_cell_temp_cell", "Temperature Max Cell No", "mdi:counter", "", ClassNone},
	{"min_cell_temp_cell", "Temperature Min Cell No", "mdi:counter", "", ClassNone},
	{"charge_total", "Charge Total", "mdi:battery-charging", "Ah", ClassNone},
	{"discharge_total", "Discharge Total", "mdi:battery-charging", "Ah", ClassNone},
	{"eta", "ETA", "mdi:timer", "", ClassNone},
	{"battery_volt", "Battery Voltage", "mdi:car-battery", "V", ClassVoltage},
	{"out_volt", "Output Voltage", "mdi:current-ac", "V", ClassVoltage},
	{"soc_diagnosis", "SOC Diagnosis", "mdi:battery", "%", ClassNone},
	{"soh", "State of Health", "mdi:heart-pulse", "%", ClassNone},
	{"state", "State", "mdi:information-outline", "", ClassNone},
}
