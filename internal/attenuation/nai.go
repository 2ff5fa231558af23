package attenuation

// NaI(Tl) total attenuation without coherent scattering from NIST XCOM.
// Energies in MeV, mass attenuation in cm^2/g. Repeated energies mark the
// L and K absorption edges.
var naiXCOM = [][2]float64{
	{1.000e-03, 7.794e+03}, {1.072e-03, 6.736e+03}, {1.072e-03, 7.021e+03},
	{1.072e-03, 7.925e+03}, {1.072e-03, 7.021e+03}, {1.072e-03, 7.924e+03},
	{1.500e-03, 3.801e+03}, {2.000e-03, 1.917e+03}, {3.000e-03, 7.003e+02},
	{4.000e-03, 3.352e+02}, {4.557e-03, 2.387e+02}, {4.557e-03, 6.585e+02},
	{4.702e-03, 6.166e+02}, {4.852e-03, 5.775e+02}, {4.852e-03, 7.719e+02},
	{5.000e-03, 7.277e+02}, {5.188e-03, 6.612e+02}, {5.188e-03, 7.604e+02},
	{6.000e-03, 5.298e+02}, {8.000e-03, 2.489e+02}, {1.000e-02, 1.376e+02},
	{1.500e-02, 4.578e+01}, {2.000e-02, 2.071e+01}, {3.000e-02, 6.714e+00},
	{3.317e-02, 5.081e+00}, {3.317e-02, 2.987e+01}, {4.000e-02, 1.835e+01},
	{5.000e-02, 1.018e+01}, {6.000e-02, 6.228e+00}, {8.000e-02, 2.863e+00},
	{1.000e-01, 1.576e+00}, {1.500e-01, 5.663e-01}, {2.000e-01, 3.020e-01},
	{3.000e-01, 1.534e-01}, {4.000e-01, 1.100e-01}, {5.000e-01, 9.035e-02},
	{6.000e-01, 7.901e-02}, {8.000e-01, 6.571e-02}, {1.000e+00, 5.762e-02},
	{1.022e+00, 5.687e-02}, {1.250e+00, 5.086e-02}, {1.500e+00, 4.644e-02},
	{2.000e+00, 4.119e-02}, {2.044e+00, 4.087e-02}, {3.000e+00, 3.668e-02},
	{4.000e+00, 3.512e-02}, {5.000e+00, 3.472e-02}, {6.000e+00, 3.484e-02},
	{7.000e+00, 3.526e-02}, {8.000e+00, 3.584e-02}, {9.000e+00, 3.650e-02},
	{1.000e+01, 3.722e-02},
}

const naiDensity = 3.67 // g/cm^3
